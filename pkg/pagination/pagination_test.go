package pagination

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, PageSize: DefaultPageSize}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 3, PageSize: MaxPageSize}, Params{Page: 3, PageSize: 500}.Normalize())
	assert.Equal(t, 24, Params{Page: 3}.Offset())
}

func TestValidate(t *testing.T) {
	require.NoError(t, Params{Page: 1}.Validate(0))
	require.NoError(t, Params{Page: 2, PageSize: 10}.Validate(11))
	assert.ErrorIs(t, Params{Page: 2, PageSize: 10}.Validate(10), ErrPageOutOfRange)
}

func TestLinks(t *testing.T) {
	base, err := url.Parse("http://shop.test/api/products/?search=lamp&page=2")
	require.NoError(t, err)

	next, prev := Params{Page: 2, PageSize: 5}.Links(base, 12)
	require.NotNil(t, next)
	require.NotNil(t, prev)
	assert.Equal(t, "http://shop.test/api/products/?page=3&search=lamp", *next)
	assert.Equal(t, "http://shop.test/api/products/?search=lamp", *prev)

	next, prev = Params{Page: 3, PageSize: 5}.Links(base, 12)
	assert.Nil(t, next)
	assert.NotNil(t, prev)

	next, prev = Params{Page: 1, PageSize: 5}.Links(base, 3)
	assert.Nil(t, next)
	assert.Nil(t, prev)
}

func TestHugePageIsOutOfRange(t *testing.T) {
	huge := Params{Page: math.MaxInt, PageSize: 12}

	assert.ErrorIs(t, huge.Validate(4), ErrPageOutOfRange)
	assert.ErrorIs(t, huge.Validate(math.MaxInt64), ErrPageOutOfRange)
	assert.False(t, huge.HasNext(4))
	assert.Equal(t, math.MaxInt, huge.Offset())

	base, err := url.Parse("http://shop.test/api/products/")
	require.NoError(t, err)
	next, prev := huge.Links(base, 4)
	assert.Nil(t, next)
	assert.Nil(t, prev)
}

func TestLastPageBoundaries(t *testing.T) {
	require.NoError(t, Params{Page: 3, PageSize: 5}.Validate(12))
	assert.ErrorIs(t, Params{Page: 4, PageSize: 5}.Validate(12), ErrPageOutOfRange)
	assert.ErrorIs(t, Params{Page: 2}.Validate(0), ErrPageOutOfRange)
	assert.True(t, Params{Page: 2, PageSize: 5}.HasNext(11))
	assert.False(t, Params{Page: 3, PageSize: 5}.HasNext(11))
}

package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterFromQuery(t *testing.T) {
	t.Run("значения по умолчанию", func(t *testing.T) {
		filter := ParseFilterFromQuery(url.Values{})
		assert.Equal(t, DefaultLimit, filter.Limit)
		assert.Equal(t, 1, filter.Page)
		assert.Equal(t, 0, filter.Offset)
		assert.True(t, filter.WithPagination)
		assert.Empty(t, filter.Search)
	})

	t.Run("limit ограничивается максимумом", func(t *testing.T) {
		values := url.Values{}
		values.Set("limit", "100000")
		filter := ParseFilterFromQuery(values)
		assert.Equal(t, MaxLimit, filter.Limit)
	})

	t.Run("offset рассчитывается из page", func(t *testing.T) {
		values := url.Values{}
		values.Set("limit", "10")
		values.Set("page", "3")
		filter := ParseFilterFromQuery(values)
		assert.Equal(t, 20, filter.Offset)
	})

	t.Run("sort и filter разбираются из скобочной нотации", func(t *testing.T) {
		values := url.Values{}
		values.Set("search", "станок")
		values.Set("sort[created_at]", "DESC")
		values.Set("sort[bogus]", "sideways") // неизвестное направление отбрасывается
		values.Set("filter[state]", "new")
		filter := ParseFilterFromQuery(values)

		assert.Equal(t, "станок", filter.Search)
		assert.Equal(t, map[string]string{"created_at": "desc"}, filter.Sort)
		assert.Equal(t, "new", filter.Filter["state"])
	})

	t.Run("повторные filter склеиваются в IN-список", func(t *testing.T) {
		values := url.Values{}
		values.Add("filter[state]", "new")
		values.Add("filter[state]", "in_progress")
		filter := ParseFilterFromQuery(values)
		assert.Equal(t, "new,in_progress", filter.Filter["state"])
	})

	t.Run("withPagination=false отключает пагинацию", func(t *testing.T) {
		values := url.Values{}
		values.Set("withPagination", "false")
		filter := ParseFilterFromQuery(values)
		assert.False(t, filter.WithPagination)
	})
}

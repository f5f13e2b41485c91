package types

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagination(t *testing.T) {
	t.Run("默认值修正", func(t *testing.T) {
		p := NewPagination(0, 0)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 10, p.PageSize)
	})

	t.Run("超过最大值", func(t *testing.T) {
		p := NewPagination(5000, 500)
		assert.Equal(t, 1000, p.Page)
		assert.Equal(t, 100, p.PageSize)
	})

	t.Run("查询参数", func(t *testing.T) {
		values := url.Values{}
		NewPagination(2, 20).Encode(values)
		assert.Equal(t, "2", values.Get("page"))
		assert.Equal(t, "20", values.Get("pageSize"))
	})
}

func TestPageResult(t *testing.T) {
	raw := `{"list":[1,2,3,4,5],"total":25,"page":1,"pageSize":5,"totalPages":5}`
	var page PageResult[int]
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	assert.Equal(t, int64(25), page.Total)
	assert.True(t, page.HasNext())

	t.Run("客户端过滤", func(t *testing.T) {
		even := page.Filter(func(v int) bool { return v%2 == 0 })
		assert.Equal(t, []int{2, 4}, even.List)
		assert.Equal(t, int64(2), even.Total)
		assert.Equal(t, 1, even.TotalPages)
		assert.Equal(t, 5, even.PageSize)
	})

	t.Run("全部过滤掉", func(t *testing.T) {
		none := page.Filter(func(v int) bool { return false })
		assert.True(t, none.Empty())
		assert.Equal(t, 0, none.TotalPages)
		assert.NotNil(t, none.List)
	})
}

func TestDateTime(t *testing.T) {
	cases := []string{
		`"2024-01-03T10:20:30"`,
		`"2024-01-03 10:20:30"`,
		`"2024-01-03T10:20:30.123+08:00"`,
	}
	for _, c := range cases {
		var d DateTime
		require.NoError(t, json.Unmarshal([]byte(c), &d), c)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, 3, d.Day())
	}

	t.Run("空值", func(t *testing.T) {
		var d DateTime
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
		var nilDate *DateTime
		assert.Equal(t, "-", nilDate.String())
	})

	t.Run("序列化", func(t *testing.T) {
		d := DateTime{}
		require.NoError(t, json.Unmarshal([]byte(`"2024-01-01"`), &d))
		out, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2024-01-01T00:00:00"`, string(out))
	})
}

package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/class-divider/internal/partition"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		s     Settings
		count int
		want  error
	}{
		{"groups ok", Settings{partition.ByGroupCount, 3}, 7, nil},
		{"groups equal roster", Settings{partition.ByGroupCount, 7}, 7, nil},
		{"size ok", Settings{partition.ByMemberCount, 3}, 7, nil},
		{"zero", Settings{partition.ByGroupCount, 0}, 7, ErrValueNotPositive},
		{"negative size", Settings{partition.ByMemberCount, -1}, 7, ErrValueNotPositive},
		{"too many groups", Settings{partition.ByGroupCount, 8}, 7, ErrTooManyGroups},
		{"group too large", Settings{partition.ByMemberCount, 8}, 7, ErrGroupTooLarge},
		{"bad mode", Settings{partition.Mode(9), 2}, 7, ErrUnknownMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Validate(tc.count)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, in := range []string{"by-group-count", "Groups", " g "} {
		m, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, partition.ByGroupCount, m)
	}
	for _, in := range []string{"by-member-count", "size", "M"} {
		m, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, partition.ByMemberCount, m)
	}
	_, err := ParseMode("random")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(" 4 ")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	_, err = ParseValue("0")
	assert.ErrorIs(t, err, ErrValueNotPositive)
	_, err = ParseValue("")
	assert.ErrorIs(t, err, ErrValueNotPositive)
	_, err = ParseValue("four")
	assert.Error(t, err)
}

func TestToggleAndPlan(t *testing.T) {
	s := Default()
	assert.Equal(t, partition.ByGroupCount, s.Mode)
	s = s.Toggle()
	assert.Equal(t, partition.ByMemberCount, s.Mode)
	s.Value = 3
	assert.Equal(t, 3, s.Plan(7).Groups)
	assert.Equal(t, "by-member-count=3", s.String())
}

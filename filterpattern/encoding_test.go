package filterpattern_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sqlc-dev/druidsql/filterpattern"
)

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		p    filterpattern.Pattern
		want string
	}{
		{
			"values",
			&filterpattern.Values{Column: "lol", Values: []any{"hello"}},
			`{"type":"values","negated":false,"column":"lol","values":["hello"]}`,
		},
		{
			"contains",
			&filterpattern.Contains{Negated: true, Column: "page", Contains: "wiki"},
			`{"type":"contains","negated":true,"column":"page","contains":"wiki"}`,
		},
		{
			"time relative",
			&filterpattern.TimeRelative{
				Column:        "__time",
				Anchor:        filterpattern.AnchorTimestamp,
				RangeDuration: "P1D",
				RangeStep:     -1,
				StartBound:    filterpattern.StartInclusive,
				EndBound:      filterpattern.EndExclusive,
			},
			`{"type":"timeRelative","negated":false,"column":"__time","anchor":"timestamp",
			  "rangeDuration":"P1D","rangeStep":-1,"startBound":"[","endBound":")"}`,
		},
		{
			"custom",
			mustFit(t, `NOT ("a" > 1 OR "b" < 2)`),
			`{"type":"custom","negated":true,"expression":"(\"a\" > 1 OR \"b\" < 2)"}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.p)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(data))
		})
	}
}

func TestUnmarshalJSON(t *testing.T) {
	patterns := []filterpattern.Pattern{
		&filterpattern.Values{Negated: true, Column: "lol", Values: []any{"a", "b"}},
		&filterpattern.Contains{Column: "page", Contains: "wiki"},
		&filterpattern.Regexp{Column: "page", Regexp: "^W"},
		&filterpattern.TimeInterval{
			Column: "__time",
			Form:   filterpattern.FormFunction,
			Start:  time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		&filterpattern.TimeRelative{
			Column:        "__time",
			Anchor:        filterpattern.AnchorMaxDataTime,
			AlignType:     filterpattern.AlignCeil,
			AlignDuration: "P1D",
			RangeDuration: "P1W",
			RangeStep:     -1,
			Timezone:      "Etc/UTC",
			StartBound:    filterpattern.StartInclusive,
			EndBound:      filterpattern.EndExclusive,
		},
		&filterpattern.NumberRange{Column: "x", Start: 1, StartBound: "(", End: 2.5, EndBound: "]"},
		&filterpattern.MVContains{Column: "tags", Values: []any{"t1"}},
		mustFit(t, `LOWER("page") = 'x'`),
	}
	for _, p := range patterns {
		t.Run(string(p.Type()), func(t *testing.T) {
			data, err := json.Marshal(p)
			require.NoError(t, err)
			got, err := filterpattern.UnmarshalJSON(data)
			require.NoError(t, err)
			assert.Equal(t, p.Type(), got.Type())
			assert.Equal(t,
				filterpattern.FilterPatternToExpression(p).String(),
				filterpattern.FilterPatternToExpression(got).String())
		})
	}
}

func TestUnmarshalJSONErrors(t *testing.T) {
	for _, data := range []string{
		`{"type":"nope"}`,
		`{"negated":true}`,
		`{"type":"custom","expression":"a = ("}`,
		`[1,2]`,
	} {
		_, err := filterpattern.UnmarshalJSON([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestYAML(t *testing.T) {
	p := &filterpattern.Values{Column: "lol", Values: []any{"hello", "goodbye"}}
	data, err := yaml.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: values\n")
	assert.Contains(t, string(data), "column: lol\n")

	got, err := filterpattern.UnmarshalYAML(data)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	custom := mustFit(t, `"a" > 1 OR "b" < 2`)
	data, err = yaml.Marshal(custom)
	require.NoError(t, err)
	got, err = filterpattern.UnmarshalYAML(data)
	require.NoError(t, err)
	assert.Equal(t, filterpattern.TypeCustom, got.Type())
	assert.Equal(t, `"a" > 1 OR "b" < 2`, filterpattern.FilterPatternToExpression(got).String())

	_, err = filterpattern.UnmarshalYAML([]byte("type: nope\n"))
	assert.Error(t, err)
}

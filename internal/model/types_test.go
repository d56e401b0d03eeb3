package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "plain date", in: "2026-10-17", want: NewDate(2026, time.October, 17)},
		{name: "utc timestamp", in: "2026-10-17T23:30:00Z", want: NewDate(2026, time.October, 17)},
		{name: "offset keeps local calendar day", in: "2026-10-18T01:00:00+05:30", want: NewDate(2026, time.October, 18)},
		{name: "empty", in: "", wantErr: true},
		{name: "us format", in: "10/17/2026", wantErr: true},
		{name: "impossible day", in: "2026-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, time.March, 5)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-05"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back))

	var zero Date
	b, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	assert.Error(t, json.Unmarshal([]byte(`20260305`), &back))
}

func TestDateScan(t *testing.T) {
	want := NewDate(2026, time.October, 17)

	tests := []struct {
		name string
		src  any
	}{
		{name: "text", src: "2026-10-17"},
		{name: "bytes", src: []byte("2026-10-17")},
		{name: "datetime text", src: "2026-10-17 00:00:00+00:00"},
		{name: "time", src: time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.True(t, want.Equal(d), "Scan(%v) = %s", tt.src, d)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))

	v, err := want.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", v)
}

func TestAmountJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "number", in: `3.5`, want: "3.5"},
		{name: "quoted number", in: `"12.40"`, want: "12.4"},
		{name: "integer", in: `7`, want: "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.in), &a))
			assert.Equal(t, tt.want, a.String())

			out, err := json.Marshal(a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}

	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"three"`), &a))

	for _, in := range []string{`1e-50000000`, `"1e-50000000"`, `1e+1000000000`} {
		var huge Amount
		assert.ErrorIs(t, json.Unmarshal([]byte(in), &huge), ErrAmountExponent, in)
		assert.True(t, huge.IsZero(), in)
	}

	var req CreateExpenseRequest
	err := json.Unmarshal([]byte(`{"description":"x","amount":1e-50000000,"date":"2026-10-17"}`), &req)
	assert.ErrorIs(t, err, ErrAmountExponent)
}

func TestNewAmountExponent(t *testing.T) {
	_, err := NewAmount("1e-50000000")
	assert.ErrorIs(t, err, ErrAmountExponent)

	_, err = NewAmount("1e13")
	assert.ErrorIs(t, err, ErrAmountExponent)

	a, err := NewAmount("1e12")
	require.NoError(t, err)
	assert.True(t, a.ExponentInRange())

	a, err = NewAmount("0.0000000001")
	require.NoError(t, err)
	assert.True(t, a.ExponentInRange())
}

func TestAmountMissingStaysNil(t *testing.T) {
	var req CreateExpenseRequest
	require.NoError(t, json.Unmarshal([]byte(`{"description":"x","amount":null}`), &req))
	assert.Nil(t, req.Amount)
	assert.Nil(t, req.Date)
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{in: "Food", want: CategoryFood},
		{in: "  healthcare ", want: CategoryHealthcare},
		{in: "BILLS", want: CategoryBills},
		{in: "", want: CategoryOther},
		{in: "Crypto", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.in))
		})
	}

	_, ok := ParseCategory("Crypto")
	assert.False(t, ok)
}

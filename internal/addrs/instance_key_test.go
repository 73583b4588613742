// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package addrs

import (
	"testing"

	"github.com/zclconf/go-cty/cty"
)

func TestParseInstanceKey(t *testing.T) {
	testCases := map[string]struct {
		value   cty.Value
		want    InstanceKey
		wantErr bool
	}{
		"string": {
			value: cty.StringVal("a"),
			want:  StringKey("a"),
		},
		"number": {
			value: cty.NumberIntVal(2),
			want:  IntKey(2),
		},
		"bool": {
			value:   cty.True,
			wantErr: true,
		},
		"object": {
			value:   cty.EmptyObjectVal,
			wantErr: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseInstanceKey(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %#v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.want {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestInstanceKeyString(t *testing.T) {
	if got, want := IntKey(3).String(), "[3]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := StringKey("a").String(), `["a"]`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

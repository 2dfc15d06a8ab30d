package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFieldValue_MarshalShape(t *testing.T) {
	tests := []struct {
		name  string
		value FieldValue
		want  string
	}{
		{"single value stays scalar", FieldValue{"application/json"}, `"application/json"`},
		{"two values become array", FieldValue{"a=1", "b=2"}, `["a=1","b=2"]`},
		{"three values keep order", FieldValue{"v1", "v2", "v3"}, `["v1","v2","v3"]`},
		{"empty is empty array", FieldValue{}, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFieldValue_UnmarshalShape(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    FieldValue
		wantErr bool
	}{
		{"scalar string", `"close"`, FieldValue{"close"}, false},
		{"array of strings", `["a=1","b=2"]`, FieldValue{"a=1", "b=2"}, false},
		{"number rejected", `42`, nil, true},
		{"object rejected", `{"x":1}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FieldValue
			err := json.Unmarshal([]byte(tt.data), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldValues_GetSet_CaseInsensitive(t *testing.T) {
	f := FieldValues{"content-type": FieldValue{"text/html"}}

	if got := f.Get("Content-Type"); got != "text/html" {
		t.Errorf("Get(Content-Type) = %q, want %q", got, "text/html")
	}

	f.Set("Content-Type", "application/json")

	if len(f) != 1 {
		t.Fatalf("Set created a duplicate entry: %v", f)
	}
	if got := f.Get("content-type"); got != "application/json" {
		t.Errorf("Get after Set = %q, want %q", got, "application/json")
	}
	if _, ok := f["content-type"]; !ok {
		t.Error("Set should keep the existing key casing")
	}
}

func TestFieldValues_Add_FoldsRepeats(t *testing.T) {
	f := FieldValues{}
	f.Add("Set-Cookie", "a=1")
	f.Add("Set-Cookie", "b=2")

	want := FieldValue{"a=1", "b=2"}
	if !reflect.DeepEqual(f["Set-Cookie"], want) {
		t.Errorf("Set-Cookie = %v, want %v", f["Set-Cookie"], want)
	}
}

func TestFieldValues_Clone_Independent(t *testing.T) {
	orig := FieldValues{"Accept": FieldValue{"text/html"}}
	clone := orig.Clone()

	clone.Set("Accept", "application/json")
	clone.Add("X-Extra", "1")

	if got := orig.Get("Accept"); got != "text/html" {
		t.Errorf("original mutated through clone: Accept = %q", got)
	}
	if _, ok := orig["X-Extra"]; ok {
		t.Error("original gained a key added to the clone")
	}
}

func TestFieldValues_Clone_Nil(t *testing.T) {
	var f FieldValues
	clone := f.Clone()
	clone.Set("Connection", "close")

	if got := clone.Get("Connection"); got != "close" {
		t.Errorf("clone of nil map not usable: got %q", got)
	}
}

func TestResponseRecord_JSON(t *testing.T) {
	rec := ResponseRecord{
		StatusCode: 200,
		Headers: FieldValues{
			"Content-Type": FieldValue{"text/plain"},
			"Set-Cookie":   FieldValue{"a=1", "b=2"},
		},
		Body:              "hello",
		Mode:              ModeText,
		ProxyResponseTime: 12,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded ResponseRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(decoded, rec) {
		t.Errorf("round trip = %+v, want %+v", decoded, rec)
	}
}

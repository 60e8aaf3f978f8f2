package compressor

import (
	"encoding/json"
	"testing"
)

func TestParseOperation_ShouldDefaultToCompress(t *testing.T) {
	cases := map[string]Operation{
		"compress": OperationCompress,
		"resize":   OperationResize,
		"convert":  OperationConvert,
		"":         OperationCompress,
		"rotate":   OperationCompress,
		"RESIZE":   OperationCompress,
	}

	for raw, expected := range cases {
		if got := ParseOperation(raw); got != expected {
			t.Errorf("ParseOperation(%q) = %q, expected %q", raw, got, expected)
		}
	}
}

func TestFormatList_ShouldAcceptStringOrList(t *testing.T) {
	var single ConvertSpec
	if err := json.Unmarshal([]byte(`{"type":"image/webp"}`), &single); err != nil {
		t.Fatal(err)
	}
	if len(single.Type) != 1 || !single.Type.Includes("image/webp") {
		t.Errorf("unexpected single format list: %v", single.Type)
	}

	var many ConvertSpec
	if err := json.Unmarshal([]byte(`{"type":["image/webp","image/png"]}`), &many); err != nil {
		t.Fatal(err)
	}
	if len(many.Type) != 2 || !many.Type.Includes("image/png") {
		t.Errorf("unexpected format list: %v", many.Type)
	}

	var invalid ConvertSpec
	if err := json.Unmarshal([]byte(`{"type":42}`), &invalid); err == nil {
		t.Errorf("expected numeric convert type to be rejected")
	}
}

func TestFormatList_ShouldEncodeSingleEntryAsString(t *testing.T) {
	encoded, _ := json.Marshal(ConvertSpec{Type: FormatList{"image/avif"}})
	if string(encoded) != `{"type":"image/avif"}` {
		t.Errorf("unexpected encoding: %s", encoded)
	}

	encoded, _ = json.Marshal(ConvertSpec{Type: FormatList{"image/avif", "image/webp"}})
	if string(encoded) != `{"type":["image/avif","image/webp"]}` {
		t.Errorf("unexpected encoding: %s", encoded)
	}
}

func TestUpstreamError_ShouldDescribeItself(t *testing.T) {
	err := &UpstreamError{Stage: "compression", StatusCode: 401, Body: []byte(`{"error":"Unauthorized","message":"Credentials are invalid."}`)}

	if err.Error() != "compression failed with status 401: Credentials are invalid." {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !err.JSONBody() {
		t.Errorf("expected json body to be detected")
	}

	plain := &UpstreamError{Stage: "transform", StatusCode: 502, Body: []byte("bad gateway")}
	if plain.Error() != "transform failed with status 502" || plain.JSONBody() {
		t.Errorf("unexpected plain upstream error: %s", plain.Error())
	}
}

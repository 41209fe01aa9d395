package container

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// encodeImage produces an apj image field the way the firmware build does.
func encodeImage(t *testing.T, image []byte) string {
	t.Helper()
	var b bytes.Buffer
	w := zlib.NewWriter(&b)
	if _, err := w.Write(image); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return base64.StdEncoding.EncodeToString(b.Bytes())
}

func sampleApj(t *testing.T, image []byte) []byte {
	t.Helper()
	return []byte(`{"board_id": 9, "magic": "APJFWv1", "description": "Firmware for a STM32F427xx board",
 "image": "` + encodeImage(t, image) + `", "summary": "fmuv3", "version": "0.1",
 "image_size": 1234, "git_identity": "1a2b3c4d", "board_revision": 0, "image_maxsize": 2080768,
 "flash_free": 1.50, "extra": {"nested": [1, 2, {"deep": null}], "empty": {}}}`)
}

func TestDecodeApj(t *testing.T) {
	image := bytes.Repeat([]byte("firmware\x00\x01"), 100)

	meta, got, err := Decode(FormatApj, sampleApj(t, image))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(got, image) {
		t.Error("decoded image does not match")
	}
	if meta.Format != FormatApj {
		t.Errorf("meta.Format = %v, want apj", meta.Format)
	}

	wantKeys := []string{"board_id", "magic", "description", "image", "summary", "version",
		"image_size", "git_identity", "board_revision", "image_maxsize", "flash_free", "extra"}
	if strings.Join(meta.Keys(), ",") != strings.Join(wantKeys, ",") {
		t.Errorf("Keys() = %v, want %v", meta.Keys(), wantKeys)
	}
}

func TestEncodeApj_RoundTrip(t *testing.T) {
	image := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 512)
	meta, decoded, err := Decode(FormatApj, sampleApj(t, image))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	patched := append([]byte("prefix"), decoded...)
	out, err := Encode(meta, patched)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	meta2, image2, err := Decode(FormatApj, out)
	if err != nil {
		t.Fatalf("second Decode() error = %v", err)
	}
	if !bytes.Equal(image2, patched) {
		t.Error("round trip changed the image")
	}
	if strings.Join(meta2.Keys(), ",") != strings.Join(meta.Keys(), ",") {
		t.Errorf("member order changed: %v -> %v", meta.Keys(), meta2.Keys())
	}

	// Other members are carried through with their original token text
	for i, m := range meta.Members {
		if m.Key == ApjImageKey {
			continue
		}
		var before, after bytes.Buffer
		_ = json.Compact(&before, m.Value)
		_ = json.Compact(&after, meta2.Members[i].Value)
		if before.String() != after.String() {
			t.Errorf("member %q changed: %s -> %s", m.Key, before.String(), after.String())
		}
	}
	if !bytes.Contains(out, []byte(`"flash_free": 1.50`)) {
		t.Error("number literal was not preserved")
	}

	// Decode-encode-decode is stable
	out2, err := Encode(meta2, image2)
	if err != nil {
		t.Fatalf("second Encode() error = %v", err)
	}
	if !bytes.Equal(out, out2) {
		t.Error("encoding is not deterministic")
	}
}

func TestEncodeApj_Layout(t *testing.T) {
	meta := &Metadata{
		Format: FormatApj,
		Members: []Member{
			{Key: "board_id", Value: json.RawMessage(`9`)},
			{Key: "image", Value: json.RawMessage(`""`)},
			{Key: "extra", Value: json.RawMessage(`{"a":[1,2]}`)},
		},
	}

	out, err := Encode(meta, []byte("fw"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	lines := strings.Split(string(out), "\n")
	want := []string{
		`{`,
		`    "board_id": 9,`,
		`    "image": "` + base64.StdEncoding.EncodeToString(mustDeflate(t, []byte("fw"))) + `",`,
		`    "extra": {`,
		`        "a": [`,
		`            1,`,
		`            2`,
		`        ]`,
		`    }`,
		`}`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func mustDeflate(t *testing.T, image []byte) []byte {
	t.Helper()
	out, err := deflate(image)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	return out
}

func TestEncodeApj_UsesBestCompression(t *testing.T) {
	compressed := mustDeflate(t, bytes.Repeat([]byte("a"), 1000))
	// zlib FLEVEL bits in the second header byte: 3 means maximum compression
	if level := compressed[1] >> 6; level != 3 {
		t.Errorf("FLEVEL = %d, want 3", level)
	}
}

func TestDecodeApj_Malformed(t *testing.T) {
	validImage := encodeImage(t, []byte("fw"))

	tests := []struct {
		name   string
		raw    string
		reason string
	}{
		{name: "missing image", raw: `{"board_id": 9, "summary": "fmuv3"}`, reason: `missing "image" field`},
		{name: "image is number", raw: `{"image": 12}`, reason: "not a string"},
		{name: "image is null", raw: `{"image": null}`, reason: "not a string"},
		{name: "bad base64", raw: `{"image": "!!!not base64!!!"}`, reason: "base64"},
		{name: "not zlib", raw: `{"image": "` + base64.StdEncoding.EncodeToString([]byte("plain")) + `"}`, reason: "zlib"},
		{name: "empty image", raw: `{"image": ""}`, reason: "zlib"},
		{name: "truncated zlib", raw: `{"image": "` + validImage[:len(validImage)/2] + `"}`, reason: "image"},
		{name: "not JSON", raw: `this is not json`, reason: "invalid JSON"},
		{name: "array document", raw: `[{"image": "` + validImage + `"}]`, reason: "invalid JSON"},
		{name: "truncated document", raw: `{"image": "` + validImage + `"`, reason: "invalid JSON"},
		{name: "trailing data", raw: `{"image": "` + validImage + `"} {}`, reason: "invalid JSON"},
		{name: "empty input", raw: ``, reason: "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, image, err := Decode(FormatApj, []byte(tt.raw))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Decode() = %v, %v, %v; want ErrMalformed", meta, image, err)
			}
			var merr *MalformedError
			if !errors.As(err, &merr) || merr.Format != FormatApj {
				t.Errorf("error = %#v, want *MalformedError for apj", err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("error %q should mention %q", err.Error(), tt.reason)
			}
			if image != nil {
				t.Error("expected nil image on error")
			}
		})
	}
}

func TestDecodeApj_DuplicateKeys(t *testing.T) {
	raw := `{"image": "ignored", "board_id": 1, "image": "` + encodeImage(t, []byte("last")) + `"}`

	meta, image, err := Decode(FormatApj, []byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(image) != "last" {
		t.Errorf("image = %q, want last value", image)
	}
	if strings.Join(meta.Keys(), ",") != "image,board_id" {
		t.Errorf("Keys() = %v", meta.Keys())
	}
}

func TestEncodeApj_AddsMissingImage(t *testing.T) {
	meta := &Metadata{Format: FormatApj, Members: []Member{{Key: "board_id", Value: json.RawMessage(`9`)}}}

	out, err := Encode(meta, []byte("fw"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	_, image, err := Decode(FormatApj, out)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if string(image) != "fw" {
		t.Errorf("image = %q", image)
	}
	if len(meta.Members) != 1 {
		t.Error("Encode modified the metadata")
	}
}

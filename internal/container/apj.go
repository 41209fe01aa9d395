package container

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ApjImageKey is the apj member holding the encoded firmware image
const ApjImageKey = "image"

// apjIndent matches the indentation of files written by the ArduPilot tools.
const apjIndent = "    "

func decodeApj(raw []byte) (*Metadata, []byte, error) {
	members, err := parseObject(raw)
	if err != nil {
		return nil, nil, malformed(FormatApj, "invalid JSON document", err)
	}

	idx := memberIndex(members, ApjImageKey)
	if idx < 0 {
		return nil, nil, malformed(FormatApj, fmt.Sprintf("missing %q field", ApjImageKey), nil)
	}

	value := bytes.TrimSpace(members[idx].Value)
	if len(value) == 0 || value[0] != '"' {
		return nil, nil, malformed(FormatApj, fmt.Sprintf("%q field is not a string", ApjImageKey), nil)
	}

	var encoded string
	if err := json.Unmarshal(value, &encoded); err != nil {
		return nil, nil, malformed(FormatApj, fmt.Sprintf("%q field is not a string", ApjImageKey), err)
	}

	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, malformed(FormatApj, "image is not valid base64", err)
	}

	image, err := inflate(compressed)
	if err != nil {
		return nil, nil, malformed(FormatApj, "image is not valid zlib data", err)
	}

	return &Metadata{Format: FormatApj, Members: members}, image, nil
}

func encodeApj(meta *Metadata, image []byte) ([]byte, error) {
	compressed, err := deflate(image)
	if err != nil {
		return nil, fmt.Errorf("failed to compress image: %w", err)
	}

	value, err := json.Marshal(base64.StdEncoding.EncodeToString(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	members := make([]Member, len(meta.Members))
	copy(members, meta.Members)
	if idx := memberIndex(members, ApjImageKey); idx >= 0 {
		members[idx].Value = value
	} else {
		members = append(members, Member{Key: ApjImageKey, Value: value})
	}

	return renderObject(members)
}

// parseObject reads a top-level JSON object keeping member order and the
// raw text of every value. A repeated key keeps its first position and its
// last value.
func parseObject(raw []byte) ([]Member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("document is not a JSON object")
	}

	var members []Member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("member %q: %w", key, err)
		}

		if idx := memberIndex(members, key); idx >= 0 {
			members[idx].Value = value
		} else {
			members = append(members, Member{Key: key, Value: value})
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON object")
	}

	return members, nil
}

// renderObject writes members as an indented JSON object.
func renderObject(members []Member) ([]byte, error) {
	if len(members) == 0 {
		return []byte("{}"), nil
	}

	var b bytes.Buffer
	b.WriteString("{\n")
	for i, member := range members {
		key, err := json.Marshal(member.Key)
		if err != nil {
			return nil, err
		}
		b.WriteString(apjIndent)
		b.Write(key)
		b.WriteString(": ")
		if err := json.Indent(&b, member.Value, apjIndent, apjIndent); err != nil {
			return nil, fmt.Errorf("member %q: %w", member.Key, err)
		}
		if i < len(members)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")

	return b.Bytes(), nil
}

func memberIndex(members []Member, key string) int {
	for i, member := range members {
		if member.Key == key {
			return i
		}
	}
	return -1
}

func inflate(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func deflate(image []byte) ([]byte, error) {
	var b bytes.Buffer
	w, err := zlib.NewWriterLevel(&b, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(image); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

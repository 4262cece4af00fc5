// SPDX-License-Identifier: MPL-2.0

package releaseasset

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	fieldAssets      = "assets"
	fieldName        = "name"
	fieldDownloadURL = "browser_download_url"
)

// ParseReleaseAssets validates a release-by-tag response body and returns its
// assets in order. The body must be a JSON object whose "assets" key holds a
// list of objects, each with non-empty string "name" and
// "browser_download_url" fields. The first violation is reported as a
// *MalformedResponseError and no assets are returned.
func ParseReleaseAssets(body []byte) ([]ReleaseAsset, error) {
	root, err := decodeObject(body)
	if err != nil {
		return nil, &MalformedResponseError{AssetIndex: -1, Reason: "must be a JSON object", Cause: err}
	}

	rawAssets, ok := root[fieldAssets]
	if !ok {
		return nil, &MalformedResponseError{Field: fieldAssets, AssetIndex: -1, Reason: "missing"}
	}

	items, err := decodeList(rawAssets)
	if err != nil {
		return nil, &MalformedResponseError{Field: fieldAssets, AssetIndex: -1, Reason: "must be a list", Cause: err}
	}

	assets := make([]ReleaseAsset, 0, len(items))
	for i, item := range items {
		asset, err := parseAsset(i, item)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func parseAsset(index int, raw json.RawMessage) (ReleaseAsset, error) {
	path := fmt.Sprintf("%s[%d]", fieldAssets, index)

	fields, err := decodeObject(raw)
	if err != nil {
		return ReleaseAsset{}, &MalformedResponseError{Field: path, AssetIndex: index, Reason: "must be an object", Cause: err}
	}

	name, err := requireString(fields, path, index, fieldName)
	if err != nil {
		return ReleaseAsset{}, err
	}
	downloadURL, err := requireString(fields, path, index, fieldDownloadURL)
	if err != nil {
		return ReleaseAsset{}, err
	}

	return ReleaseAsset{Name: name, DownloadURL: downloadURL}, nil
}

func requireString(fields map[string]json.RawMessage, path string, index int, key string) (string, error) {
	field := path + "." + key

	raw, ok := fields[key]
	if !ok {
		return "", &MalformedResponseError{Field: field, AssetIndex: index, Reason: "missing"}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", &MalformedResponseError{Field: field, AssetIndex: index, Reason: "must be a string"}
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", &MalformedResponseError{Field: field, AssetIndex: index, Reason: "must be a string", Cause: err}
	}
	if s == "" {
		return "", &MalformedResponseError{Field: field, AssetIndex: index, Reason: "must not be empty"}
	}
	return s, nil
}

// decodeObject decodes raw as a JSON object. null and non-object values are
// rejected, so a nil map is never returned without an error.
func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("got %s", describeJSON(trimmed))
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// decodeList decodes raw as a JSON array. Objects with numeric keys and null
// are rejected.
func decodeList(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("got %s", describeJSON(trimmed))
	}
	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func describeJSON(trimmed []byte) string {
	if len(trimmed) == 0 {
		return "empty document"
	}
	switch c := trimmed[0]; {
	case c == '{':
		return "object"
	case c == '[':
		return "list"
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "boolean"
	case c == 'n':
		return "null"
	case c == '-' || (c >= '0' && c <= '9'):
		return "number"
	default:
		return "invalid JSON"
	}
}

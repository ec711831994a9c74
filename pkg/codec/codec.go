// Package codec serializes the opaque metadata payload carried by media
// attachments. Entities store the blob as a plain string and never depend on
// a dynamic representation; typed access happens here, on demand.
package codec

import (
	"encoding/json"

	dErrors "discussly/pkg/domain-errors"
	"discussly/pkg/outcome"
)

// Encode serializes an arbitrary payload into the stored blob form.
func Encode(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", dErrors.Wrap(dErrors.KindValidation, "metadata is not serializable", err)
	}
	return string(raw), nil
}

// Decode deserializes a stored blob into the caller's shape.
func Decode[T any](blob string) outcome.Of[T] {
	var v T
	if err := json.Unmarshal([]byte(blob), &v); err != nil {
		return outcome.Reject[T](dErrors.KindValidation, "invalid metadata format: "+err.Error())
	}
	return outcome.Value(v)
}

// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package protoio provides functions for reading and writing proto messages as JSON files.
package protoio

import (
	"errors"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// WriteMessageJSON writes a single proto message as JSON to a file.
//
// The file is written to a temporary file in the same directory and renamed
// into place, so concurrent readers never see a partial file.
func WriteMessageJSON(filePath string, message proto.Message) (retErr error) {
	data, err := protojsonMarshal(message)
	if err != nil {
		return err
	}
	// Append a trailing newline for clean file formatting.
	data = append(data, '\n')
	tempFile, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			retErr = errors.Join(retErr, os.Remove(tempFile.Name()))
		}
	}()
	if _, err := tempFile.Write(data); err != nil {
		return errors.Join(err, tempFile.Close())
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	return os.Rename(tempFile.Name(), filePath)
}

// ReadMessageJSON reads a single proto message from a JSON file.
func ReadMessageJSON(filePath string, message proto.Message) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return protojsonUnmarshal(data, message)
}

// protojsonMarshal marshals a proto message to JSON using proto field names.
func protojsonMarshal(message proto.Message) ([]byte, error) {
	return (protojson.MarshalOptions{UseProtoNames: true}).Marshal(message)
}

// protojsonUnmarshal unmarshals JSON data into a proto message, ignoring
// fields written by newer versions.
func protojsonUnmarshal(data []byte, message proto.Message) error {
	return (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, message)
}

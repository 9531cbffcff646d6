// util/trail.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressTrail delta-encodes and zstd-compresses a slice of quantized
// trail samples (e.g. millidegree lat/lon or feet) for compact archival,
// mirroring the delta+compress combination used for other time-series
// data in the engine.
func CompressTrail(samples []int32) ([]byte, error) {
	delta := DeltaEncode(samples)

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}

	if err := binary.Write(zw, binary.LittleEndian, delta); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecompressTrail reverses CompressTrail.
func DecompressTrail(compressed []byte) ([]int32, error) {
	zr, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var raw bytes.Buffer
	if _, err := io.Copy(&raw, zr); err != nil {
		return nil, err
	}

	data := raw.Bytes()
	n := len(data) / 4
	delta := make([]int32, n)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, delta); err != nil {
		return nil, err
	}

	return DeltaDecode(delta), nil
}

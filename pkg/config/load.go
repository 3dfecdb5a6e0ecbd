// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/CRYPTO-KU/FaultTolerantSmartGridAggregation/pkg/errors"
)

// StrictDecodeFile decodes the toml file at path into cfg. Any key that does
// not map to a field of cfg is an error.
func StrictDecodeFile(path string, cfg *RunConfig) error {
	if strings.TrimSpace(path) == "" {
		return errors.ErrLoadConfig.GenWithStackByArgs("<empty path>")
	}
	if filepath.Ext(path) != ".toml" {
		return errors.WrapError(errors.ErrLoadConfig,
			errors.New("config must be a .toml file"), path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.WrapError(errors.ErrLoadConfig, err, path)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var b strings.Builder
		for i, item := range undecoded {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		return errors.WrapError(errors.ErrLoadConfig,
			errors.Errorf("unknown configuration options: %s", b.String()), path)
	}
	return nil
}

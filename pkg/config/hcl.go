// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "fsclip.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Expose temp_dir so store paths can be written relative to it
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"temp_dir": cty.StringVal(os.TempDir()),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		Store *struct {
			Backend string `hcl:"backend,optional"`
			Path    string `hcl:"path,optional"`
		} `hcl:"store,block"`
		Transfer *struct {
			BufferSize   int      `hcl:"buffer_size,optional"`
			Ignore       []string `hcl:"ignore,optional"`
			HideProgress bool     `hcl:"hide_progress,optional"`
		} `hcl:"transfer,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{}
	if hclCfg.Store != nil {
		cfg.Store = Store{
			Backend: hclCfg.Store.Backend,
			Path:    hclCfg.Store.Path,
		}
	}
	if hclCfg.Transfer != nil {
		cfg.Transfer = Transfer{
			BufferSize:   hclCfg.Transfer.BufferSize,
			Ignore:       hclCfg.Transfer.Ignore,
			HideProgress: hclCfg.Transfer.HideProgress,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Copyright 2023 - 2026 The cubectl Authors
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

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/corovcam/cubectl/data"
	"github.com/corovcam/cubectl/pipeline"
	"github.com/corovcam/cubectl/util"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type build struct {
	filename string
	cube     *data.Cube
	result   *pipeline.Result
}

func rowFilter() (url.Values, error) {
	where := v.GetString("where")
	if where == "" {
		return nil, nil
	}
	return util.ParseRowFilter(where)
}

func newProgress(w io.Writer) *mpb.Progress {
	if v.GetBool("no-progress") {
		return nil
	}
	return mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
}

func addBar(progress *mpb.Progress, name string) *mpb.Bar {
	if progress == nil {
		return nil
	}
	return progress.AddBar(0,
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1}),
			decor.CountersNoUnit("%d / %d", decor.WC{W: 16}),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)
}

// buildCube reads the cube file and builds its cube. The bar, if any, shows the
// aggregated rows.
func buildCube(ctx context.Context, filename string, progress *mpb.Progress) (*build, error) {
	def, err := data.ReadCube(filename)
	if err != nil {
		return nil, err
	}
	filter, err := rowFilter()
	if err != nil {
		return nil, err
	}

	p := &pipeline.Pipeline{
		Cube:   def,
		Filter: filter,
		Logger: logger.With().Str("file", filename).Logger(),
	}
	bar := addBar(progress, def.Dataset.ID)
	if bar != nil {
		p.Progress = bar
	}

	result, err := p.Run(ctx)
	if err != nil {
		if bar != nil {
			bar.Abort(true)
		}
		return nil, fmt.Errorf("error while building %s: %w", filename, err)
	}
	return &build{filename: filename, cube: def, result: result}, nil
}

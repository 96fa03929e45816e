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

package util

import (
	"fmt"
	"strings"
	"time"
)

// BuildStats collects the numbers of one cube build.
type BuildStats struct {
	Dataset       string
	Rows          int
	FilteredRows  int
	RowErrors     int
	CodeLists     int
	Codes         int
	Observations  int
	Violations    int
	BytesOut      int64
	TotalDuration time.Duration
}

func (bs *BuildStats) String() string {

	builder := strings.Builder{}
	if bs.Dataset != "" {
		builder.WriteString(fmt.Sprintf("Dataset		[id]			%s\n", bs.Dataset))
	}
	builder.WriteString(fmt.Sprintf("Rows		[total, filtered, errors]	%d, %d, %d\n", bs.Rows, bs.FilteredRows, bs.RowErrors))
	builder.WriteString(fmt.Sprintf("Codes		[lists, total]		%d, %d\n", bs.CodeLists, bs.Codes))
	builder.WriteString(fmt.Sprintf("Observations	[total]			%d\n", bs.Observations))
	builder.WriteString(fmt.Sprintf("Violations	[total]			%d\n", bs.Violations))
	if bs.BytesOut > 0 {
		builder.WriteString(fmt.Sprintf("Bytes Out	[total]			%s\n", FmtBytesHumanReadable(float32(bs.BytesOut))))
	}
	builder.WriteString(fmt.Sprintf("Duration	[total]			%s\n", FmtDurationHumanReadable(bs.TotalDuration)))

	return builder.String()
}

// FmtBuildDurations formats the latency distribution of several builds.
func FmtBuildDurations(durations []time.Duration) string {
	seconds := make([]float64, len(durations))
	for i, d := range durations {
		seconds[i] = d.Seconds()
	}
	p := CalculateDurationStatistics(seconds)
	return fmt.Sprintf("Build Latencies	[mean, 50, 95, 99, max]	%s, %s, %s, %s, %s\n", p.Mean, p.Q50, p.Q95, p.Q99, p.Max)
}

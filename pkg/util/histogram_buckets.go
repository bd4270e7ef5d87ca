/*
Copyright 2018 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// DefaultProvisionLatencyBuckets are the upper bounds, in seconds, of the provision latency histogram.
var DefaultProvisionLatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// HistogramBuckets are strictly increasing histogram upper bounds. It is a pflag.Value
// accepting comma separated bounds.
type HistogramBuckets []float64

func (hb *HistogramBuckets) String() string {
	bounds := make([]string, 0, len(*hb))
	for _, b := range *hb {
		bounds = append(bounds, strconv.FormatFloat(b, 'g', -1, 64))
	}
	return strings.Join(bounds, ",")
}

func (hb *HistogramBuckets) Set(value string) error {
	var buckets HistogramBuckets
	for _, boundaryStr := range strings.Split(value, ",") {
		boundary, err := strconv.ParseFloat(strings.TrimSpace(boundaryStr), 64)
		if err != nil {
			return fmt.Errorf("invalid histogram bucket %q: %v", boundaryStr, err)
		}
		buckets = append(buckets, boundary)
	}
	if err := buckets.Validate(); err != nil {
		return err
	}
	*hb = buckets
	return nil
}

func (hb *HistogramBuckets) Type() string {
	return "histogramBuckets"
}

// Validate checks that the bounds are strictly increasing.
func (hb HistogramBuckets) Validate() error {
	for i := 1; i < len(hb); i++ {
		if hb[i] <= hb[i-1] {
			return fmt.Errorf("histogram buckets must be in increasing order: %v <= %v", hb[i], hb[i-1])
		}
	}
	return nil
}

// StringToHistogramBucketsHookFunc returns a mapstructure decode hook converting comma
// separated strings, as read from flags and environment variables, into HistogramBuckets.
func StringToHistogramBucketsHookFunc() func(reflect.Type, reflect.Type, interface{}) (interface{}, error) {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(HistogramBuckets{}) {
			return data, nil
		}
		var hb HistogramBuckets
		if err := hb.Set(data.(string)); err != nil {
			return nil, err
		}
		return hb, nil
	}
}

/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package maclookup

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/maclookup/pkg/inventory"
)

type fetchJob struct {
	device  *inventory.Device
	command string
}

type fetchResult struct {
	data []byte
	err  error
}

// fetchTables runs every job with at most workers queries in flight. Results are
// returned in job order; a failed job never cancels the others.
func fetchTables(ctx context.Context, q Querier, workers int, jobs []fetchJob) []fetchResult {
	results := make([]fetchResult, len(jobs))

	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group

	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job

		g.Go(func() error {
			data, err := q.Parse(ctx, job.device, job.command)
			results[i] = fetchResult{data: data, err: err}

			return nil
		})
	}

	_ = g.Wait()

	return results
}

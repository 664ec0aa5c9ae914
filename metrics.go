// Copyright 2025 Blink Labs Software
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

package ballot

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsRegisterer records the collectors registered through it so that a
// stopped Ballot can remove them and register fresh ones on the next Start
type metricsRegisterer struct {
	registerer prometheus.Registerer
	collectors []prometheus.Collector
	mu         sync.Mutex
}

func newMetricsRegisterer(registerer prometheus.Registerer) *metricsRegisterer {
	return &metricsRegisterer{
		registerer: registerer,
	}
}

func (r *metricsRegisterer) Register(c prometheus.Collector) error {
	if err := r.registerer.Register(c); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors = append(r.collectors, c)
	return nil
}

func (r *metricsRegisterer) MustRegister(cs ...prometheus.Collector) {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

func (r *metricsRegisterer) Unregister(c prometheus.Collector) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, tmpCollector := range r.collectors {
		if tmpCollector == c {
			r.collectors = append(r.collectors[:i], r.collectors[i+1:]...)
			break
		}
	}
	return r.registerer.Unregister(c)
}

// unregisterAll removes every collector registered so far
func (r *metricsRegisterer) unregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.collectors {
		r.registerer.Unregister(c)
	}
	r.collectors = nil
}

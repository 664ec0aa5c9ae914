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

package voting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	transitionInitializePoll      = "initialize_poll"
	transitionUpsertPoll          = "upsert_poll"
	transitionInitializeCandidate = "initialize_candidate"
	transitionVote                = "vote"
)

type programMetrics struct {
	transitions *prometheus.CounterVec
	votesCast   prometheus.Counter
}

func (p *Program) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	p.metrics = &programMetrics{}
	p.metrics.transitions = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballot_transitions_total",
			Help: "number of transitions by name and result",
		},
		[]string{"transition", "result"},
	)
	p.metrics.votesCast = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "ballot_votes_cast_total",
			Help: "number of votes committed",
		},
	)
}

// resultLabel maps a transition outcome to a bounded set of label values
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if name, ok := errorName(err); ok {
		return name
	}
	return "error"
}

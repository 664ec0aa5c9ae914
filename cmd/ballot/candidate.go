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

package main

import (
	"github.com/blinklabs-io/ballot/voting"
	"github.com/spf13/cobra"
)

func candidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidate",
		Short: "Add and show poll candidates",
	}
	cmd.AddCommand(
		candidateAddCommand(),
		candidateShowCommand(),
	)
	return cmd
}

func candidateAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a candidate to a poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := callerFromFlags(cmd)
			if err != nil {
				return err
			}
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			name, _ := cmd.Flags().GetString("name")
			imageUrl, _ := cmd.Flags().GetString("image-url")
			return runWithBallot(cmd, func(p *voting.Program) (any, error) {
				candidate, err := p.InitializeCandidate(cmd.Context(), caller, name, imageUrl, pollId)
				if err != nil {
					return nil, err
				}
				return newCandidateOutput(p.ProgramId(), pollId, candidate)
			})
		},
	}
	addCallerFlag(cmd)
	addPollIdFlag(cmd)
	cmd.Flags().String("name", "", "candidate name")
	cmd.Flags().String("image-url", "", "candidate image URL")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func candidateShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			name, _ := cmd.Flags().GetString("name")
			return runWithBallot(cmd, func(p *voting.Program) (any, error) {
				candidate, err := p.Candidate(cmd.Context(), pollId, name)
				if err != nil {
					return nil, err
				}
				return newCandidateOutput(p.ProgramId(), pollId, candidate)
			})
		},
	}
	addPollIdFlag(cmd)
	cmd.Flags().String("name", "", "candidate name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

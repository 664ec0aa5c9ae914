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

func voteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Cast the caller's vote for a candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := callerFromFlags(cmd)
			if err != nil {
				return err
			}
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			name, _ := cmd.Flags().GetString("name")
			return runWithBallot(cmd, func(p *voting.Program) (any, error) {
				candidate, err := p.Vote(cmd.Context(), caller, name, pollId)
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
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func receiptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Show vote receipts",
	}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the vote receipt of a caller in a poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := callerFromFlags(cmd)
			if err != nil {
				return err
			}
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			return runWithBallot(cmd, func(p *voting.Program) (any, error) {
				receipt, err := p.Receipt(cmd.Context(), pollId, caller)
				if err != nil {
					return nil, err
				}
				return newReceiptOutput(p.ProgramId(), pollId, caller, receipt)
			})
		},
	}
	addCallerFlag(showCmd)
	addPollIdFlag(showCmd)
	cmd.AddCommand(showCmd)
	return cmd
}

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
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/voting"
	"github.com/spf13/cobra"
)

func pollCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Create, update and show polls",
	}
	cmd.AddCommand(
		pollWriteCommand("create", "Create a new poll", false),
		pollWriteCommand("update", "Create a poll or update its description and timestamps", true),
		pollShowCommand(),
	)
	return cmd
}

func pollWriteCommand(use string, short string, upsert bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := callerFromFlags(cmd)
			if err != nil {
				return err
			}
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			description, _ := cmd.Flags().GetString("description")
			pollStart, _ := cmd.Flags().GetUint64("start")
			pollEnd, _ := cmd.Flags().GetUint64("end")
			return runWithBallot(cmd, func(p *voting.Program) (any, error) {
				var poll *models.Poll
				var err error
				if upsert {
					poll, err = p.UpsertPoll(cmd.Context(), caller, pollId, description, pollStart, pollEnd)
				} else {
					poll, err = p.InitializePoll(cmd.Context(), caller, pollId, description, pollStart, pollEnd)
				}
				if err != nil {
					return nil, err
				}
				return newPollOutput(p.ProgramId(), poll)
			})
		},
	}
	addCallerFlag(cmd)
	addPollIdFlag(cmd)
	cmd.Flags().String("description", "", "poll description")
	cmd.Flags().Uint64("start", 0, "poll start timestamp")
	cmd.Flags().Uint64("end", 0, "poll end timestamp")
	return cmd
}

func pollShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a poll and its candidate roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			return runWithBallot(cmd, func(p *voting.Program) (any, error) {
				poll, err := p.Poll(cmd.Context(), pollId)
				if err != nil {
					return nil, err
				}
				return newPollOutput(p.ProgramId(), poll)
			})
		},
	}
	addPollIdFlag(cmd)
	return cmd
}

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
	"errors"

	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/spf13/cobra"
)

// addressRun derives an address under the configured program ID and prints it
func addressRun(
	cmd *cobra.Command,
	derive func(address.ProgramId) (address.Address, uint8, error),
) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	programId, err := cfg.ParsedProgramId()
	if err != nil {
		return err
	}
	addr, bump, err := derive(programId)
	if err != nil {
		return err
	}
	return printYaml(
		cmd.OutOrStdout(),
		addressOutput{
			Address: addr.String(),
			Bump:    bump,
		},
	)
}

func addressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive record addresses",
	}

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Derive the address of a poll",
		RunE: func(cmd *cobra.Command, args []string) error {
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			return addressRun(cmd, func(programId address.ProgramId) (address.Address, uint8, error) {
				return address.Poll(programId, pollId)
			})
		},
	}
	addPollIdFlag(pollCmd)

	candidateCmd := &cobra.Command{
		Use:   "candidate",
		Short: "Derive the address of a candidate",
		RunE: func(cmd *cobra.Command, args []string) error {
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			name, _ := cmd.Flags().GetString("name")
			return addressRun(cmd, func(programId address.ProgramId) (address.Address, uint8, error) {
				return address.Candidate(programId, pollId, name)
			})
		},
	}
	addPollIdFlag(candidateCmd)
	candidateCmd.Flags().String("name", "", "candidate name")
	_ = candidateCmd.MarkFlagRequired("name")

	receiptCmd := &cobra.Command{
		Use:   "receipt",
		Short: "Derive the address of a caller's vote receipt",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := callerFromFlags(cmd)
			if err != nil {
				return err
			}
			pollId, _ := cmd.Flags().GetUint64("poll-id")
			return addressRun(cmd, func(programId address.ProgramId) (address.Address, uint8, error) {
				return address.Receipt(programId, pollId, caller)
			})
		},
	}
	addPollIdFlag(receiptCmd)
	addCallerFlag(receiptCmd)

	cmd.AddCommand(pollCmd, candidateCmd, receiptCmd)
	return cmd
}

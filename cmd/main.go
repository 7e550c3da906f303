// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package main

import (
	"fmt"
	"os"

	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/redpanda-data/tenancy/cmd/run"
	"github.com/redpanda-data/tenancy/cmd/version"
)

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync() //nolint:errcheck // stderr flush failure is unactionable.

	logger := zapr.NewLogger(zapLogger)

	rootCmd := cobra.Command{
		Use: "tenancy",
	}
	rootCmd.AddCommand(
		run.Command(logger),
		version.Command(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}
}

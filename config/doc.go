/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the YAML collection manifest describing which agent
// endpoints to trace and builds the corresponding adapters. The manifest
// path and global verbosity come from the environment (EVALVIEW_CONFIG,
// EVALVIEW_VERBOSE).
package config

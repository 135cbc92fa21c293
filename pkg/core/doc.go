// Package core reconciles the manifest with the machine.
//
// A Manager ties the manifest repository, the source registry, the process
// runner and the console together and implements the user-facing
// operations: add, remove, list, info and sync.
//
// # Add is transactional
//
// Adding an app edits the manifest in memory first, then installs it. The
// file is written only after the install succeeded or was not needed, so a
// failed install leaves apps.toml byte-identical. When the app switches
// source, the old package is uninstalled before the new one is installed;
// if the new install then fails, the old package is reinstalled so that
// the machine keeps matching the unchanged manifest.
//
// # Sync runs four phases
//
//  1. Prime: each enabled source is told which apps it is about to install
//  2. Install: every declared app is ensured installed, in manifest order
//  3. Unmanaged: packages installed but not declared are listed per
//     provider and, once confirmed, uninstalled
//  4. Upgrade: each provider upgrades its packages exactly once
//
// Failures are collected and reported; they never stop the remaining
// items or phases. Sync returns an error when anything failed.
package core

// Package config loads the linkguard configuration.
//
// # Architecture
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← LINKGUARD_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← linkguard.toml or linkguard.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Maps merge key by key, so a file that maps one extra command keeps the
// built-in commands. Lists replace.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment variable loading, @include handling
//   - layer: layer priorities and deep merging
//
// # Example
//
//	[links]
//	attributeKeys = ["linkHref", "anchorHref"]
//	mergeOverlapping = true
//
//	[warnings]
//	show = true
//	message = "Links cannot be placed inside other links."
//
//	[commands]
//	link = "linkHref"
//	anchor = "anchorHref"
package config

// SPDX-License-Identifier: EPL-2.0

// Package config reads mixer settings from YAML.
//
// A file only needs the keys it changes; everything else keeps the
// built-in defaults:
//
//	master_volume: 0.8
//	assets: ./sounds
//	presets:
//	  automationNatural:
//	    duration: 1.5
//	  trackSwapCross:
//	    old: {ramp: linear, duration: 2}
//	    new: {ramp: [0, 0.5, 1], duration: 2}
//	spatializer:
//	  distance_model: linear
//	  max_distance: 50
package config

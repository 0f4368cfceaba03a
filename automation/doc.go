// SPDX-License-Identifier: EPL-2.0

// Package automation schedules click-free changes of backend parameters.
//
// An Adjustment names a ramp shape (or an explicit curve), a delay and a
// duration. Schedule turns it into backend automation events relative to
// the audio clock:
//
//	adj := automation.Resolve(presets.AutomationNatural, automation.WithDuration(2))
//	out, err := automation.Schedule(ctx, gain.Gain(), 0.5, adj, false)
//
// Shapes:
//
//   - Linear and Exponential map onto the backend ramps. Exponential ramps
//     that start or end at zero run as Natural instead.
//   - Natural approaches the target with time constant duration/4, is held
//     at 95% after three constants and ends linearly on the exact target.
//   - EqualPower and EqualPowerIn are cosine/sine value curves sampled at
//     PollRate; applied to an outgoing and an incoming source their squared
//     gains sum to one.
//
// Degraded paths are not errors. They are reported through Outcome.Warning.
package automation

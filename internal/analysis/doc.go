// Package analysis characterises recorded cloth motion.
//
//   - [SwaySpectrum]: power spectrum of one particle's sideways motion
//   - [DominantFrequency]: strongest non-DC component of a series
//   - [SettlingFrame]: first frame after which a series stays near its end value
//   - [TrajectoryToASCII]: particle path drawn as text
//
// Inputs are the frames a run recorded, so every frequency is in cycles per
// recorded frame unless a sample interval is supplied.
package analysis

// Package sky turns star records into a radiometric cubemap.
//
// The stages run in this order, all single-threaded over one [Buffer]
// owned by the caller:
//
//  1. [Project] maps a sky direction to a cubemap face and texel.
//  2. [Accumulator] converts magnitudes to flux, tints it with the
//     blackbody colour from a [ColorTable] and adds it to the texel.
//     Stars brighter than the magnitude cutoff go to a [BrightStar] list
//     instead.
//  3. [Normalize] divides every texel by the solid angle it subtends, so
//     the buffer holds radiance rather than summed irradiance.
//
// Buffers accumulated independently can be combined with [Buffer.Merge].
package sky

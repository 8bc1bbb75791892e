// Package render encodes a normalized cubemap buffer into output files.
//
// # Outputs
//
//   - Face strip PNG: the six faces stacked vertically, res × 6·res, tone
//     mapped to 8-bit with [ToneMapScale]. See [FaceStrip].
//   - Net PNG: the same faces laid out as an unfolded cube cross on a
//     4·res × 3·res transparent canvas. See [Net].
//   - HDR cubemap: a KTX2 container in VK_FORMAT_E5B9G9R9_UFLOAT_PACK32,
//     optionally zstd supercompressed. See [EncodeKTX2].
//
// File names follow [StripName], [NetName], [KTX2Name] and
// [BrightStarsName].
//
// # Tone Mapping
//
// The LDR previews scale linear radiance by 255·2^(3−EV) and clamp to
// [0, 255]. Lower exposure values brighten the image.
//
//	strip := render.FaceStrip(buf, -7)
//	net := render.Net(strip, buf.Res)
//	err := render.EncodePNG(w, net)
package render

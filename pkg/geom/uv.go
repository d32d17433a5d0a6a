package geom

import "github.com/go-gl/mathgl/mgl32"

// UVs travel through the subdivision hierarchy as one int32 word per corner,
// 16 fixed-point bits per channel: u in the low half, v in the high half.
// Channels are expected in [0, 1]; the codec quantizes to 1/65535 steps.

// DecodeUV unpacks a UV word into its two channels.
func DecodeUV(w int32) mgl32.Vec2 {
	u := uint32(w)
	return mgl32.Vec2{
		float32(u&0xFFFF) / 65535.0,
		float32(u>>16&0xFFFF) / 65535.0,
	}
}

// EncodeUV packs a UV pair into a fixed-point word, truncating each channel.
func EncodeUV(uv mgl32.Vec2) int32 {
	u := uint32(uv[0]*65535.0) & 0xFFFF
	v := uint32(uv[1]*65535.0) & 0xFFFF
	return int32(u | v<<16)
}

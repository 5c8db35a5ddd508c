// Package tissue holds the material label table used by breast phantoms.
package tissue

// Labels maps phantom materials to their voxel label values. A Labels value
// is built once and passed around by value; nothing mutates it afterwards.
type Labels struct {
	Background uint8
	Fat        uint8
	Skin       uint8
	Gland      uint8
	Nipple     uint8
	Muscle     uint8
	Paddle     uint8
	Cooper     uint8
	TDLU       uint8
	Duct       uint8
	Artery     uint8
	Mass       uint8
	Vein       uint8
	Calc       uint8
}

// Default returns the label table written by the phantom generator
func Default() Labels {
	return Labels{
		Background: 0,
		Fat:        1,
		Skin:       2,
		Gland:      29,
		Nipple:     33,
		Muscle:     40,
		Paddle:     50,
		Cooper:     88,
		TDLU:       95,
		Duct:       125,
		Artery:     150,
		Mass:       200,
		Vein:       225,
		Calc:       250,
	}
}

// IsBackground reports whether v is the air label
func (l Labels) IsBackground(v uint8) bool { return v == l.Background }

// IsPaddle reports whether v is the compression paddle label
func (l Labels) IsPaddle(v uint8) bool { return v == l.Paddle }

// IsTissue reports whether v is breast material, i.e. neither air nor paddle
func (l Labels) IsTissue(v uint8) bool {
	return !l.IsBackground(v) && !l.IsPaddle(v)
}

// Name returns the material name for a label, or "" if the value is unknown
func (l Labels) Name(v uint8) string {
	switch v {
	case l.Background:
		return "background"
	case l.Paddle:
		return "paddle"
	case l.Fat:
		return "fat"
	case l.Skin:
		return "skin"
	case l.Gland:
		return "gland"
	case l.Nipple:
		return "nipple"
	case l.Muscle:
		return "muscle"
	case l.Cooper:
		return "cooper"
	case l.TDLU:
		return "tdlu"
	case l.Duct:
		return "duct"
	case l.Artery:
		return "artery"
	case l.Mass:
		return "mass"
	case l.Vein:
		return "vein"
	case l.Calc:
		return "calc"
	}
	return ""
}

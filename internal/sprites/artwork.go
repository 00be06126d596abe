package sprites

import "github.com/pawsd/deskcat/internal/anim"

// artwork is the built-in frame set. Rows are overlaid top-left aligned on
// the shared canvas; spaces are transparent, so each frame only paints the
// cells its layer owns. Faces sit inside the head (rows 2-3), paws on the
// table edge (rows 6-7), effects in the margins.
var artwork = map[anim.SpriteID][]string{
	anim.SpriteBodyStandard: {
		`    /\ ___ /\`,
		`   /  '   '  \`,
		`  |           |`,
		`  |           |`,
		`   \         /`,
		`   /          \__`,
	},
	anim.SpriteBodyEarTwitch: {
		`    /\ ___ /~`,
		`   /  '   '  \`,
		`  |           |`,
		`  |           |`,
		`   \         /`,
		`   /          \__`,
	},

	anim.SpriteFaceStock: {
		``,
		``,
		`     o     o`,
		`        w`,
	},
	anim.SpriteFaceSleepy: {
		``,
		``,
		`     ~     ~`,
		`        w`,
	},
	anim.SpriteFaceHappy: {
		``,
		``,
		`     ^     ^`,
		`        w`,
	},
	anim.SpriteFaceBlink: {
		``,
		``,
		`     -     -`,
		`        w`,
	},

	anim.SpriteTable: {
		``, ``, ``, ``, ``, ``, ``,
		`======================`,
	},

	anim.SpritePawsUp: {
		``, ``, ``, ``, ``, ``,
		`    ()        ()`,
	},
	anim.SpritePawLeftDown: {
		``, ``, ``, ``, ``, ``,
		`              ()`,
		`    ()`,
	},
	anim.SpritePawRightDown: {
		``, ``, ``, ``, ``, ``,
		`    ()`,
		`              ()`,
	},

	anim.SpriteEffectClickLeft: {
		``, ``, ``, ``, ``,
		`   *`,
		` *`,
	},
	anim.SpriteEffectClickRight: {
		``, ``, ``, ``, ``,
		`                  *`,
		`                    *`,
	},

	anim.SpriteEffectSleepy1: {
		``,
		``,
		`                 z`,
	},
	anim.SpriteEffectSleepy2: {
		``,
		`                  Z`,
		`                 z`,
	},
	anim.SpriteEffectSleepy3: {
		`                   Z`,
		`                  Z`,
		`                 z`,
	},
}

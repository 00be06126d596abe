package anim

// Selection derives the per-layer sprite choice from the current state
// register. It is a pure read: all timing was already resolved by Update.
// The mapping is total over all ten states, and the table layer is present
// in every frame.
func (c *Controller) Selection() Selection {
	switch c.state {
	case Blinking:
		// Blink swaps only the face; body, paws, and effects keep animating
		// as the pre-overlay state.
		sel := c.baseSelection(c.prevState)
		sel[LayerFace] = SpriteFaceBlink
		return sel
	case EarTwitch:
		sel := c.baseSelection(c.prevState)
		sel[LayerBody] = SpriteBodyEarTwitch
		return sel
	default:
		return c.baseSelection(c.state)
	}
}

// Render pushes the current selection to the sink layer by layer in Z-order
// (body, face, table, paws, effects). Inactive layers are skipped.
func (c *Controller) Render(sink Sink) {
	sel := c.Selection()
	for layer := Layer(0); layer < NumLayers; layer++ {
		if sel[layer] != None {
			sink.Draw(layer, sel[layer])
		}
	}
}

// baseSelection maps a non-overlay state to its layer set.
func (c *Controller) baseSelection(s State) Selection {
	sel := Selection{
		LayerBody:  SpriteBodyStandard,
		LayerFace:  SpriteFaceStock,
		LayerTable: SpriteTable,
	}

	switch s {
	case IdleStage1:
		sel[LayerPaws] = SpritePawsUp
	case IdleStage2:
		// Paws tucked under the table.
	case IdleStage3:
		sel[LayerFace] = SpriteFaceSleepy
	case IdleStage4:
		sel[LayerFace] = SpriteFaceSleepy
		sel[LayerEffects] = sleepyFrames[c.effectFrame]
	case TypingSlow, TypingNormal, TypingFast:
		sel[LayerPaws] = pawFrames[c.pawFrame]
		if s == TypingFast && c.pawFrame%2 == 0 {
			if c.clickLeft {
				sel[LayerEffects] = SpriteEffectClickLeft
			} else {
				sel[LayerEffects] = SpriteEffectClickRight
			}
		}
	case TypingStreak:
		sel[LayerFace] = SpriteFaceHappy
		sel[LayerPaws] = pawFrames[c.pawFrame]
	}

	return sel
}

// pawFrames is the 4-step typing pattern: left down, both up, right down,
// both up.
var pawFrames = [4]SpriteID{
	SpritePawLeftDown,
	SpritePawsUp,
	SpritePawRightDown,
	SpritePawsUp,
}

var sleepyFrames = [3]SpriteID{
	SpriteEffectSleepy1,
	SpriteEffectSleepy2,
	SpriteEffectSleepy3,
}

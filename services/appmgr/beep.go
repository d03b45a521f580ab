package appmgr

// Beep is a tone that stops by itself after a number of frames.
type Beep struct {
	on    bool
	until uint64
}

func (b *Beep) Start(ctx *Context, frame uint64, hz uint32, frames uint64) {
	if err := ctx.Buzzer.StartTone(hz); err != nil {
		ctx.Log.Infof("beep: %v", err)
		return
	}
	b.on = true
	b.until = frame + frames
}

// Tick silences the tone once its frames have elapsed.
func (b *Beep) Tick(ctx *Context, frame uint64) {
	if !b.on || frame < b.until {
		return
	}
	b.on = false
	if err := ctx.Buzzer.StopTone(); err != nil {
		ctx.Log.Infof("beep: %v", err)
	}
}

func (b *Beep) Active() bool { return b.on }

// Reset forgets a pending stop without touching the buzzer.
func (b *Beep) Reset() { *b = Beep{} }

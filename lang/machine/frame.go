package machine

import "github.com/loxcraft/loxcraft/lang/value"

// frame is one activation record on the call stack, following the Monkey
// VM's closure/frame split: ip tracks this call's position in the shared
// flat instruction vector, basePointer marks where its parameters and
// locals begin on the value stack, and free variables are read directly
// off the closure rather than through the stack.
type frame struct {
	cl          *value.Closure
	ip          int
	basePointer int
}

func (f *frame) reset(cl *value.Closure, basePointer int) *frame {
	f.cl = cl
	f.ip = cl.Fn.StartIP
	f.basePointer = basePointer
	return f
}

// framePool is a freelist of frame records, amortizing the per-call
// allocation a recursive or tightly looping program would otherwise incur
// one *frame at a time. Frames are returned to the pool as they're popped
// off the call stack and reused by the next pushFrame.
type framePool struct {
	free []*frame
}

func newFramePool(capacity int) *framePool {
	return &framePool{free: make([]*frame, 0, capacity)}
}

func (p *framePool) get(cl *value.Closure, basePointer int) *frame {
	if n := len(p.free); n > 0 {
		f := p.free[n-1]
		p.free = p.free[:n-1]
		return f.reset(cl, basePointer)
	}
	return &frame{cl: cl, ip: cl.Fn.StartIP, basePointer: basePointer}
}

func (p *framePool) put(f *frame) {
	p.free = append(p.free, f)
}

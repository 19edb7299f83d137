package vm

import (
	"math"

	"github.com/atlas-lang/atlas/internal/bytecode"
	"github.com/atlas-lang/atlas/internal/diag"
	"github.com/atlas-lang/atlas/internal/value"
)

func (vm *VM) push(v Value) error {
	if len(vm.stack) >= maxStackSize {
		return newRuntimeError(diag.ErrResourceLimit, vm.spanHere(), "operand stack exceeded %d values", maxStackSize)
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) frame() *CallFrame {
	return &vm.frames[len(vm.frames)-1]
}

// spanHere resolves the current instruction's source span for error
// reporting, via the chunk's debug-span table (spec.md §4.7/§4.8).
func (vm *VM) spanHere() diag.Span {
	return vm.chunk.SpanAt(vm.ip)
}

func (vm *VM) readOp() bytecode.Op {
	op := bytecode.Op(vm.chunk.Code[vm.ip])
	vm.ip++
	return op
}

func (vm *VM) readU16() uint16 {
	v := vm.chunk.ReadU16(vm.ip)
	vm.ip += 2
	return v
}

func (vm *VM) readU8() uint8 {
	v := vm.chunk.Code[vm.ip]
	vm.ip++
	return v
}

// run is the dispatch loop: it executes instructions starting at
// vm.ip until Halt or a top-level Return, honoring every one of the
// fixed 34 opcodes (spec.md §4.8). Subtypes of failure (division by
// zero, OOB index, non-callable call, arity mismatch) all raise
// *RuntimeError carrying the failing instruction's debug span.
func (vm *VM) run() (Value, error) {
	for {
		if vm.hook != nil {
			if pause, reason := vm.hook.ShouldPause(vm.ip, len(vm.frames)); pause {
				return nil, &PauseError{Reason: reason}
			}
		}
		span := vm.spanHere()
		op := vm.readOp()
		switch op {
		case bytecode.OpConstant:
			idx := vm.readU16()
			if err := vm.push(vm.chunk.Constants[idx]); err != nil {
				return nil, err
			}
		case bytecode.OpNull:
			if err := vm.push(value.Null{}); err != nil {
				return nil, err
			}
		case bytecode.OpTrue:
			if err := vm.push(value.Bool(true)); err != nil {
				return nil, err
			}
		case bytecode.OpFalse:
			if err := vm.push(value.Bool(false)); err != nil {
				return nil, err
			}

		case bytecode.OpGetLocal:
			slot := vm.readU16()
			if err := vm.push(vm.stack[vm.frame().base+int(slot)]); err != nil {
				return nil, err
			}
		case bytecode.OpSetLocal:
			slot := vm.readU16()
			v := vm.pop()
			// chunk.TopLevelLocals is only a sizing hint recovered from an
			// in-process compile (it doesn't survive a compile/exec round
			// trip through .atb, per spec.md §4.9's fixed header) — grow the
			// frame on demand here exactly like callCompiled does for a
			// called function, so a deserialized chunk still runs correctly.
			f := vm.frame()
			idx := f.base + int(slot)
			for len(vm.stack) <= idx {
				vm.stack = append(vm.stack, value.Null{})
			}
			if int(slot)+1 > f.localCount {
				f.localCount = int(slot) + 1
			}
			vm.stack[idx] = v
		case bytecode.OpGetGlobal:
			idx := vm.readU16()
			name := string(vm.chunk.Constants[idx].(value.String))
			v, ok := vm.globals[name]
			if !ok {
				return nil, newRuntimeError(diag.ErrUndefinedVar, span, "undefined variable %q", name)
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}
		case bytecode.OpSetGlobal:
			idx := vm.readU16()
			name := string(vm.chunk.Constants[idx].(value.String))
			vm.globals[name] = vm.pop()

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			if err := vm.binaryArith(op, span); err != nil {
				return nil, err
			}
		case bytecode.OpNegate:
			v := vm.pop()
			n, ok := v.(value.Number)
			if !ok {
				return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "cannot negate a %s", v.TypeName())
			}
			if err := vm.push(-n); err != nil {
				return nil, err
			}

		case bytecode.OpEqual:
			r, l := vm.pop(), vm.pop()
			if err := vm.push(value.Bool(value.Equal(l, r))); err != nil {
				return nil, err
			}
		case bytecode.OpNotEqual:
			r, l := vm.pop(), vm.pop()
			if err := vm.push(value.Bool(!value.Equal(l, r))); err != nil {
				return nil, err
			}
		case bytecode.OpLess, bytecode.OpLessEqual, bytecode.OpGreater, bytecode.OpGreaterEqual:
			if err := vm.compare(op, span); err != nil {
				return nil, err
			}

		case bytecode.OpNot:
			v := vm.pop()
			b, ok := v.(value.Bool)
			if !ok {
				return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "cannot negate a %s", v.TypeName())
			}
			if err := vm.push(!b); err != nil {
				return nil, err
			}
		case bytecode.OpAnd:
			// Short-circuit skip: a truthy left operand is discarded and
			// the unconditional Jump emitted right after this opcode
			// (compiler.compileBinary) is skipped so control falls into
			// the right operand's bytecode; a falsy left operand is the
			// whole expression's result, so it's pushed back and the
			// Jump executes normally to hop over the right operand.
			v := vm.pop()
			b, ok := v.(value.Bool)
			if !ok {
				return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "operand of && must be bool, got %s", v.TypeName())
			}
			if bool(b) {
				vm.ip += 3 // skip the following Jump(i16)
			} else if err := vm.push(b); err != nil {
				return nil, err
			}
		case bytecode.OpOr:
			v := vm.pop()
			b, ok := v.(value.Bool)
			if !ok {
				return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "operand of || must be bool, got %s", v.TypeName())
			}
			if !bool(b) {
				vm.ip += 3
			} else if err := vm.push(b); err != nil {
				return nil, err
			}

		case bytecode.OpJump:
			offset := vm.readU16()
			vm.ip += int(offset)
		case bytecode.OpJumpIfFalse:
			offset := vm.readU16()
			v := vm.pop()
			b, ok := v.(value.Bool)
			if !ok {
				return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "condition did not evaluate to a bool")
			}
			if !bool(b) {
				vm.ip += int(offset)
			}
		case bytecode.OpLoop:
			offset := vm.readU16()
			vm.ip -= int(offset)

		case bytecode.OpCall:
			argc := int(vm.readU8())
			if err := vm.call(argc, span); err != nil {
				return nil, err
			}
		case bytecode.OpReturn:
			result := vm.pop()
			fr := vm.frame()
			returnIP := fr.returnIP
			base := fr.base
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.stack = vm.stack[:base]
			if len(vm.frames) == 0 {
				return result, nil
			}
			if err := vm.push(result); err != nil {
				return nil, err
			}
			vm.ip = returnIP

		case bytecode.OpArray:
			size := int(vm.readU16())
			items := make([]Value, size)
			for i := size - 1; i >= 0; i-- {
				items[i] = vm.pop()
			}
			if err := vm.push(value.NewArray(items)); err != nil {
				return nil, err
			}
		case bytecode.OpGetIndex:
			idx := vm.pop()
			base := vm.pop()
			v, err := getIndex(base, idx, span)
			if err != nil {
				return nil, err
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}
		case bytecode.OpSetIndex:
			val := vm.pop()
			idx := vm.pop()
			base := vm.pop()
			v, err := setIndex(base, idx, val, span)
			if err != nil {
				return nil, err
			}
			if err := vm.push(v); err != nil {
				return nil, err
			}

		case bytecode.OpPop:
			vm.pop()
		case bytecode.OpDup:
			if err := vm.push(vm.peek(0)); err != nil {
				return nil, err
			}

		case bytecode.OpHalt:
			if len(vm.stack) > vm.frame().localCount {
				return vm.pop(), nil
			}
			return value.Void{}, nil

		default:
			return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "unknown opcode 0x%02x", byte(op))
		}
	}
}

func (vm *VM) binaryArith(op bytecode.Op, span diag.Span) error {
	r := vm.pop()
	l := vm.pop()
	if op == bytecode.OpAdd {
		if ls, ok := l.(value.String); ok {
			rs, ok := r.(value.String)
			if !ok {
				return newRuntimeError(diag.ErrOperandType, span, "cannot add string and %s", r.TypeName())
			}
			return vm.push(ls + rs)
		}
	}
	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	if !lok || !rok {
		return newRuntimeError(diag.ErrOperandType, span, "arithmetic requires numbers, got %s and %s", l.TypeName(), r.TypeName())
	}
	switch op {
	case bytecode.OpAdd:
		return vm.push(ln + rn)
	case bytecode.OpSub:
		return vm.push(ln - rn)
	case bytecode.OpMul:
		return vm.push(ln * rn)
	case bytecode.OpDiv:
		if rn == 0 {
			return newRuntimeError(diag.ErrDivByZero, span, "division by zero")
		}
		return vm.push(ln / rn)
	case bytecode.OpMod:
		if rn == 0 {
			return newRuntimeError(diag.ErrDivByZero, span, "modulo by zero")
		}
		return vm.push(value.Number(math.Mod(float64(ln), float64(rn))))
	}
	return newRuntimeError(diag.ErrRuntimeNonCall, span, "unknown arithmetic opcode %s", op)
}

func (vm *VM) compare(op bytecode.Op, span diag.Span) error {
	r := vm.pop()
	l := vm.pop()
	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	if !lok || !rok {
		return newRuntimeError(diag.ErrOperandType, span, "comparison requires numbers, got %s and %s", l.TypeName(), r.TypeName())
	}
	switch op {
	case bytecode.OpLess:
		return vm.push(value.Bool(ln < rn))
	case bytecode.OpLessEqual:
		return vm.push(value.Bool(ln <= rn))
	case bytecode.OpGreater:
		return vm.push(value.Bool(ln > rn))
	case bytecode.OpGreaterEqual:
		return vm.push(value.Bool(ln >= rn))
	}
	return newRuntimeError(diag.ErrRuntimeNonCall, span, "unknown comparison opcode %s", op)
}

func getIndex(base, idx Value, span diag.Span) (Value, error) {
	switch b := base.(type) {
	case *value.Array:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "array index must be a number")
		}
		pos := int(n)
		if pos < 0 || pos >= len(b.Items) {
			return nil, newRuntimeError(diag.ErrIndexOOB, span, "index %d out of bounds (len %d)", pos, len(b.Items))
		}
		return b.Items[pos], nil
	case value.String:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "string index must be a number")
		}
		runes := []rune(string(b))
		pos := int(n)
		if pos < 0 || pos >= len(runes) {
			return nil, newRuntimeError(diag.ErrIndexOOB, span, "index %d out of bounds (len %d)", pos, len(runes))
		}
		return value.String(string(runes[pos])), nil
	case *value.HashMap:
		key, ok := idx.(value.String)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "hashmap key must be a string")
		}
		v, found := b.Items[string(key)]
		if !found {
			return nil, newRuntimeError(diag.ErrIndexOOB, span, "key %q not found", string(key))
		}
		return v, nil
	case *value.Queue:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "queue index must be a number")
		}
		pos := int(n)
		if pos < 0 || pos >= len(b.Items) {
			return nil, newRuntimeError(diag.ErrIndexOOB, span, "index %d out of bounds (len %d)", pos, len(b.Items))
		}
		return b.Items[pos], nil
	case *value.Stack:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "stack index must be a number")
		}
		pos := int(n)
		if pos < 0 || pos >= len(b.Items) {
			return nil, newRuntimeError(diag.ErrIndexOOB, span, "index %d out of bounds (len %d)", pos, len(b.Items))
		}
		return b.Items[pos], nil
	default:
		return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "value of type %s is not indexable", base.TypeName())
	}
}

// setIndex clones the container, mutates the clone, and returns it — the
// caller stores the returned value back into whatever binding rooted the
// index chain, exactly mirroring interpreter/assign.go's CoW rule.
func setIndex(base, idx, v Value, span diag.Span) (Value, error) {
	switch b := base.(type) {
	case *value.Array:
		n, ok := idx.(value.Number)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "array index must be a number")
		}
		pos := int(n)
		if pos < 0 || pos >= len(b.Items) {
			return nil, newRuntimeError(diag.ErrIndexOOB, span, "index %d out of bounds (len %d)", pos, len(b.Items))
		}
		clone := b.Clone()
		clone.Items[pos] = v
		return clone, nil
	case *value.HashMap:
		key, ok := idx.(value.String)
		if !ok {
			return nil, newRuntimeError(diag.ErrOperandType, span, "hashmap key must be a string")
		}
		clone := b.Clone()
		clone.Items[string(key)] = v
		return clone, nil
	default:
		return nil, newRuntimeError(diag.ErrRuntimeNonCall, span, "value of type %s is not indexable", base.TypeName())
	}
}

// call dispatches Call(argc): the callee and its arguments sit on top
// of the stack (compiler.compileExpr's CallExpr case pushes the callee
// first, then each argument). A compiled value.Function pushes a new
// CallFrame and jumps into its body; a value.Native runs immediately
// and leaves its result on the stack in the callee's place.
func (vm *VM) call(argc int, span diag.Span) error {
	args := make([]Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	callee := vm.pop()

	switch fn := callee.(type) {
	case value.Function:
		return vm.callCompiled(fn, args, span)
	case value.Native:
		if !fn.Variadic && len(args) != fn.Arity {
			return newRuntimeError(diag.ErrRuntimeArity, span, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))
		}
		v, err := fn.Fn(args)
		if err != nil {
			return newRuntimeError(diag.ErrRuntimeNonCall, span, "%s", err.Error())
		}
		return vm.push(v)
	default:
		return newRuntimeError(diag.ErrRuntimeNonCall, span, "value of type %s is not callable", callee.TypeName())
	}
}

func (vm *VM) callCompiled(fn value.Function, args []Value, span diag.Span) error {
	if fn.Variadic {
		if len(args) < fn.Arity-1 {
			return newRuntimeError(diag.ErrRuntimeArity, span, "%s expects at least %d argument(s), got %d", fn.Name, fn.Arity-1, len(args))
		}
	} else if len(args) != fn.Arity {
		return newRuntimeError(diag.ErrRuntimeArity, span, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))
	}
	if vm.ResourceLimits.MaxCallDepth > 0 && len(vm.frames) >= vm.ResourceLimits.MaxCallDepth {
		return newRuntimeError(diag.ErrResourceLimit, span, "maximum call depth exceeded")
	}

	base := len(vm.stack)
	if fn.Variadic {
		fixed := fn.Arity - 1
		vm.stack = append(vm.stack, args[:fixed]...)
		rest := make([]Value, len(args)-fixed)
		copy(rest, args[fixed:])
		vm.stack = append(vm.stack, value.NewArray(rest))
	} else {
		vm.stack = append(vm.stack, args...)
	}
	for len(vm.stack) < base+fn.LocalCount {
		vm.stack = append(vm.stack, value.Null{})
	}

	vm.frames = append(vm.frames, CallFrame{base: base, localCount: fn.LocalCount, returnIP: vm.ip, fnName: fn.Name})
	vm.ip = fn.BytecodeOffset
	return nil
}

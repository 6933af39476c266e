package cpu

import "fmt"

// All three error kinds below are fatal: once raised, emulated CPU state is
// undefined and the frame loop must stop. None of them is retried.

// UnrecognizedOpcodeError indicates an opcode byte with no entry in the
// active decode table.
type UnrecognizedOpcodeError struct {
	Code     byte
	Prefixed bool
}

func (e *UnrecognizedOpcodeError) Error() string {
	if e.Prefixed {
		return fmt.Sprintf("cpu: unrecognized opcode 0xCB 0x%02X", e.Code)
	}
	return fmt.Sprintf("cpu: unrecognized opcode 0x%02X", e.Code)
}

// NotImplementedError indicates an opcode present in the decode table whose
// handler is missing from the dispatch.
type NotImplementedError struct {
	Code     byte
	Prefixed bool
}

func (e *NotImplementedError) Error() string {
	if e.Prefixed {
		return fmt.Sprintf("cpu: opcode 0xCB 0x%02X not implemented", e.Code)
	}
	return fmt.Sprintf("cpu: opcode 0x%02X not implemented", e.Code)
}

// OpcodeError indicates a resolved operand that did not match the type its
// handler required. It points at a construction bug in the opcode tables,
// not at a runtime condition.
type OpcodeError struct {
	Message string
}

func (e *OpcodeError) Error() string {
	return "cpu: " + e.Message
}

func opcodeErrorf(format string, args ...any) *OpcodeError {
	return &OpcodeError{Message: fmt.Sprintf(format, args...)}
}

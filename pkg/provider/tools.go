package provider

import "fmt"

// FunctionCallback handles a function or tool call returned by a backend.
// It receives the raw argument string and returns the text that replaces
// the invocation output.
type FunctionCallback func(arguments string) (string, error)

// DispatchCallback invokes the callback registered for the first call,
// in server order, whose name has one. Calls without a callback are
// skipped. handled reports whether a callback ran.
//
// A callback that returns an error or panics yields handled == true and a
// non-nil err naming the function.
func DispatchCallback(calls []FunctionCall, callbacks map[string]FunctionCallback) (out string, handled bool, err error) {
	if len(callbacks) == 0 {
		return "", false, nil
	}

	for _, c := range calls {
		cb, found := callbacks[c.Name]
		if !found || cb == nil {
			continue
		}
		out, err = runCallback(c, cb)
		return out, true, err
	}
	return "", false, nil
}

func runCallback(c FunctionCall, cb FunctionCallback) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("function callback %q panicked: %v", c.Name, r)
		}
	}()

	out, err = cb(c.Arguments)
	if err != nil {
		return "", fmt.Errorf("function callback %q failed: %w", c.Name, err)
	}
	return out, nil
}

package dialognode

import "errors"

const forgetAck = "Okay, I've cleared what we discussed about weather and calendar."

// ForgetContext drops the weather and calendar context records. Facts and
// history are untouched and no collaborator is called.
func ForgetContext(in *GraphState) (*GraphState, error) {
	if in == nil || in.State == nil {
		return nil, errors.New("graph state is nil")
	}

	in.State.ResetContexts()
	in.Reply = forgetAck
	return in, nil
}

// Package txb assembles programmable transactions for the blog contract.
//
// A Transaction is an intent: a list of inputs (BCS-encoded pure values or
// object ids) and a list of Move calls whose arguments point at inputs, at
// results of earlier calls, or at the gas coin. Signing, gas selection and
// submission are left to the wallet, which receives the JSON form.
package txb

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// ArgumentKind tells where a call argument comes from.
type ArgumentKind int

const (
	KindInput ArgumentKind = iota
	KindResult
	KindGasCoin
)

// Argument references a value available to a Move call.
type Argument struct {
	Kind  ArgumentKind
	Index uint16
}

func Input(i uint16) Argument  { return Argument{Kind: KindInput, Index: i} }
func Result(i uint16) Argument { return Argument{Kind: KindResult, Index: i} }

var GasCoin = Argument{Kind: KindGasCoin}

func (a Argument) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindInput:
		return json.Marshal(map[string]uint16{"Input": a.Index})
	case KindResult:
		return json.Marshal(map[string]uint16{"Result": a.Index})
	case KindGasCoin:
		return json.Marshal("GasCoin")
	default:
		return nil, fmt.Errorf("unknown argument kind %d", a.Kind)
	}
}

func (a *Argument) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "GasCoin" {
			return fmt.Errorf("unknown argument %q", s)
		}
		*a = GasCoin
		return nil
	}

	var m map[string]uint16
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("argument: %w", err)
	}
	if i, ok := m["Input"]; ok {
		*a = Input(i)
		return nil
	}
	if i, ok := m["Result"]; ok {
		*a = Result(i)
		return nil
	}
	return fmt.Errorf("argument: unexpected %s", string(data))
}

// CallArg is one transaction input: either pure BCS bytes or an object id
// that the wallet resolves to a full reference before signing.
type CallArg struct {
	Pure     []byte
	ObjectID string
}

type pureJSON struct {
	Bytes string `json:"bytes"`
}

type objectJSON struct {
	ObjectID string `json:"objectId"`
}

type callArgJSON struct {
	Pure             *pureJSON   `json:"Pure,omitempty"`
	UnresolvedObject *objectJSON `json:"UnresolvedObject,omitempty"`
}

func (c CallArg) MarshalJSON() ([]byte, error) {
	if c.ObjectID != "" {
		return json.Marshal(callArgJSON{UnresolvedObject: &objectJSON{ObjectID: c.ObjectID}})
	}
	return json.Marshal(callArgJSON{Pure: &pureJSON{Bytes: base64.StdEncoding.EncodeToString(c.Pure)}})
}

func (c *CallArg) UnmarshalJSON(data []byte) error {
	var v callArgJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch {
	case v.UnresolvedObject != nil:
		*c = CallArg{ObjectID: v.UnresolvedObject.ObjectID}
	case v.Pure != nil:
		b, err := base64.StdEncoding.DecodeString(v.Pure.Bytes)
		if err != nil {
			return fmt.Errorf("pure input: %w", err)
		}
		*c = CallArg{Pure: b}
	default:
		return fmt.Errorf("call arg: unexpected %s", string(data))
	}
	return nil
}

// MoveCall invokes package::module::function.
type MoveCall struct {
	Package       string     `json:"package"`
	Module        string     `json:"module"`
	Function      string     `json:"function"`
	TypeArguments []string   `json:"typeArguments"`
	Arguments     []Argument `json:"arguments"`
}

// Target returns the fully qualified function name.
func (m MoveCall) Target() string {
	return m.Package + "::" + m.Module + "::" + m.Function
}

type Command struct {
	MoveCall *MoveCall `json:"MoveCall,omitempty"`
}

// Transaction is the unsigned intent handed to the wallet.
type Transaction struct {
	Version  int       `json:"version"`
	Sender   string    `json:"sender,omitempty"`
	Inputs   []CallArg `json:"inputs"`
	Commands []Command `json:"commands"`

	objects map[string]uint16
}

func New() *Transaction {
	return &Transaction{
		Version:  2,
		Inputs:   []CallArg{},
		Commands: []Command{},
		objects:  map[string]uint16{},
	}
}

// Pure adds a BCS-encoded value as a new input.
func (t *Transaction) Pure(bcs []byte) Argument {
	t.Inputs = append(t.Inputs, CallArg{Pure: bcs})
	return Input(uint16(len(t.Inputs) - 1))
}

// Object references an on-chain object. The same id always maps to the same
// input, so a shared object such as the clock appears once.
func (t *Transaction) Object(id string) Argument {
	id = strings.ToLower(id)
	if i, ok := t.objects[id]; ok {
		return Input(i)
	}
	t.Inputs = append(t.Inputs, CallArg{ObjectID: id})
	i := uint16(len(t.Inputs) - 1)
	t.objects[id] = i
	return Input(i)
}

// MoveCall appends a call and returns the handle of its result.
func (t *Transaction) MoveCall(target string, args ...Argument) (Argument, error) {
	parts := strings.Split(target, "::")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Argument{}, fmt.Errorf("invalid move call target %q", target)
	}
	t.Commands = append(t.Commands, Command{MoveCall: &MoveCall{
		Package:       parts[0],
		Module:        parts[1],
		Function:      parts[2],
		TypeArguments: []string{},
		Arguments:     args,
	}})
	return Result(uint16(len(t.Commands) - 1)), nil
}

// Calls returns the Move calls in order.
func (t *Transaction) Calls() []MoveCall {
	out := make([]MoveCall, 0, len(t.Commands))
	for _, c := range t.Commands {
		if c.MoveCall != nil {
			out = append(out, *c.MoveCall)
		}
	}
	return out
}

// JSON serializes the transaction for the wallet.
func (t *Transaction) JSON() ([]byte, error) {
	return json.Marshal(t)
}

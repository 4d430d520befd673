package model

import (
	"errors"
	"testing"
)

func TestModelError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "operation only",
			err:  NewError("Checkpoint").Cause(ErrNotPersistent).Err(),
			want: "Checkpoint: model has no data directory",
		},
		{
			name: "element and parameter",
			err:  ParameterNotDefinedError("SetParameter", 12, "Wire Size"),
			want: `SetParameter element 12 (parameter "Wire Size"): parameter not defined`,
		},
		{
			name: "connector",
			err:  NewError("Connect").Connector(ConnectorRef{Element: 3, Connector: 1}).Cause(ErrConnectorNotFound).Err(),
			want: "Connect element 3 connector 1: connector not found",
		},
		{
			name: "context",
			err:  NewError("Commit").Context("tx 4").Cause(errors.New("disk full")).Err(),
			want: "Commit (tx 4): disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModelError_Unwrap(t *testing.T) {
	err := ElementNotFoundError("Element", 7)
	if !errors.Is(err, ErrElementNotFound) {
		t.Error("errors.Is should match the cause")
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match")
	}
	if IsNotFound(ErrParameterNotDefined) {
		t.Error("IsNotFound should not match parameter errors")
	}

	built := NewError("Element").Element(7).Cause(ErrElementNotFound).Build()
	if built.Element != 7 || built.Op != "Element" {
		t.Errorf("Build() = %+v", built)
	}
}

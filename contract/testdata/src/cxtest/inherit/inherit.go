package inherit

type ValidationError struct{}

func (*ValidationError) Error() string { return "invalid" }

type Validator interface {
	//throws:ValidationError
	Validate() error
}

type Form struct{}

func (*Form) Validate() error { return nil }

type Base struct{}

//throws:ValidationError
func (*Base) Check() error { return nil }

type Derived struct {
	Base
}

func (*Derived) Check() error { return nil }

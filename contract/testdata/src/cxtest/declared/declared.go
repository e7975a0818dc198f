package declared

type NotFoundError struct{}

func (*NotFoundError) Error() string { return "not found" }

type TimeoutError struct{}

func (*TimeoutError) Error() string { return "timeout" }

//throws:NotFoundError,TimeoutError,NotFoundError
func DoWork() error { return nil }

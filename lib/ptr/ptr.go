package ptr

func ToString(val string) *string {
	return &val
}

package utils

func StringPtr(s string) *string   { return &s }
func Uint64Ptr(v uint64) *uint64   { return &v }
func Float64Ptr(v float64) *float64 { return &v }

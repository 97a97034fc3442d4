package version

// Value is overridden at build time with -ldflags "-X ext2view/internal/version.Value=v1.2.3".
var Value = "dev"

func String() string {
	if Value == "" {
		return "dev"
	}
	return Value
}

package transform_test

import (
	"fmt"

	"github.com/matzehuels/gridstudio/pkg/transform"
)

func ExampleScreen() {
	a := transform.Screen(12, -4, 1.5)
	fmt.Println(a.CSS())
	// Output:
	// translate(12px, -4px) scale(1.5)
}

// Package reading converts integers into their romanized Japanese reading.
package reading

// MaxValue is the largest number ToReading accepts.
const MaxValue = 99_999_999

const zero = "zero"

var units = [10]string{"", "ichi", "ni", "san", "yon", "go", "roku", "nana", "hachi", "kyuu"}

var tens = [10]string{"", "juu", "nijuu", "sanjuu", "yonjuu", "gojuu", "rokujuu", "nanajuu", "hachijuu", "kyuujuu"}

// Multiples whose reading is not unit+magnitude.
var (
	irregularHundreds  = map[int]string{1: "hyaku", 3: "sanbyaku", 6: "roppyaku", 8: "happyaku"}
	irregularThousands = map[int]string{1: "sen", 3: "sanzen", 8: "hassen"}
)

// InDomain reports whether n can be passed to ToReading.
func InDomain(n int) bool {
	return n >= 0 && n <= MaxValue
}

// ToReading returns the reading of n, e.g. 3000 -> "sanzen".
// n must satisfy InDomain; other values produce unspecified output.
func ToReading(n int) string {
	if n == 0 {
		return zero
	}
	var out []byte
	if n >= 10000 {
		manPart := n / 10000
		if manPart > 1 {
			out = append(out, ToReading(manPart)...)
		}
		out = append(out, "man"...)
		n %= 10000
	}
	if n >= 1000 {
		out = append(out, magnitude(n/1000, "sen", irregularThousands)...)
		n %= 1000
	}
	if n >= 100 {
		out = append(out, magnitude(n/100, "hyaku", irregularHundreds)...)
		n %= 100
	}
	if n >= 10 {
		out = append(out, tens[n/10]...)
		n %= 10
	}
	if n > 0 {
		out = append(out, units[n]...)
	}
	return string(out)
}

func magnitude(multiple int, word string, irregular map[int]string) string {
	if s, ok := irregular[multiple]; ok {
		return s
	}
	return units[multiple] + word
}

package gs1

// CheckDigit computes the GS1 mod-10 check digit for a numeric string.
// Weights alternate 3,1,3,... starting from the rightmost digit.
func CheckDigit(digits string) (int, error) {
	if !isDigits(digits) {
		return 0, encodingError(digits, "check digit input must be numeric")
	}
	sum := 0
	weight := 3
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight = 4 - weight
	}
	return (10 - sum%10) % 10, nil
}

// ValidCheckDigit reports whether the last digit of code is the check digit
// of the digits preceding it.
func ValidCheckDigit(code string) bool {
	if len(code) < 2 || !isDigits(code) {
		return false
	}
	check, err := CheckDigit(code[:len(code)-1])
	if err != nil {
		return false
	}
	return int(code[len(code)-1]-'0') == check
}

package sqllog

// boundaryLen is the fixed width of a record header timestamp,
// "YYYY-MM-DD HH:MM:SS.mmm".
const boundaryLen = 23

// daysInMonth holds the day count per month in a non-leap year.
var daysInMonth = [12]byte{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// IsBoundary reports whether s is exactly a calendar-valid 23-character
// timestamp of the form "YYYY-MM-DD HH:MM:SS.mmm". It runs on every scanned
// line, so it works on raw bytes instead of going through time.Parse.
func IsBoundary(s string) bool {
	if len(s) != boundaryLen {
		return false
	}

	if s[4] != '-' || s[7] != '-' || s[10] != ' ' || s[13] != ':' || s[16] != ':' || s[19] != '.' {
		return false
	}

	for _, i := range [17]int{0, 1, 2, 3, 5, 6, 8, 9, 11, 12, 14, 15, 17, 18, 20, 21, 22} {
		if !isDigit(s[i]) {
			return false
		}
	}

	year := int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	if year == 0 {
		return false
	}

	month := int(s[5]-'0')*10 + int(s[6]-'0')
	if month == 0 || month > 12 {
		return false
	}

	maxDays := int(daysInMonth[month-1])
	if month == 2 && isLeapYear(year) {
		maxDays++
	}

	day := int(s[8]-'0')*10 + int(s[9]-'0')
	if day == 0 || day > maxDays {
		return false
	}

	hour := int(s[11]-'0')*10 + int(s[12]-'0')
	minute := int(s[14]-'0')*10 + int(s[15]-'0')
	second := int(s[17]-'0')*10 + int(s[18]-'0')
	return hour <= 23 && minute <= 59 && second <= 59
}

// FindBoundaryPos returns the index of the first 23-character window in s
// that satisfies IsBoundary, or -1 when no window matches. Used to locate
// the first record header inside leading noise.
func FindBoundaryPos(s string) int {
	for i := 0; i+boundaryLen <= len(s); i++ {
		if IsBoundary(s[i : i+boundaryLen]) {
			return i
		}
	}
	return -1
}

// lineStartsBoundary reports whether the line opens with a record header.
func lineStartsBoundary(line string) bool {
	return len(line) >= boundaryLen && IsBoundary(line[:boundaryLen])
}

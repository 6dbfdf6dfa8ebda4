package status

// CodeInfo describes one code of a family
type CodeInfo struct {
	Value   int
	Name    string
	Message string
	Kind    Kind
}

// FamilyInfo lists every code of one operation family
type FamilyInfo struct {
	Family Family
	Codes  []CodeInfo
}

// Families returns the whole registry, one entry per operation family,
// codes ascending by value
func Families() []FamilyInfo {
	return []FamilyInfo{
		registerTable.describe(FamilyRegister),
		loginTable.describe(FamilyLogin),
		logoutTable.describe(FamilyLogout),
		changePasswordTable.describe(FamilyChangePassword),
		deletePlayerTable.describe(FamilyDeletePlayer),
		createRoomTable.describe(FamilyCreateRoom),
	}
}

// Lookup resolves a raw value within a family. The second result is false
// when the family does not define the value.
func Lookup(family Family, value int) (CodeInfo, bool) {
	for _, f := range Families() {
		if f.Family != family {
			continue
		}
		for _, c := range f.Codes {
			if c.Value == value {
				return c, true
			}
		}
	}
	return CodeInfo{}, false
}

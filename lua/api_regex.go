package lua

import (
	"regexp"

	glua "github.com/yuin/gopher-lua"
)

const luaRegexTypeName = "Regex"

// registerRegexType registers the Regex userdata type.
func registerRegexType(L *glua.LState) {
	mt := L.NewTypeMetatable(luaRegexTypeName)
	L.SetField(mt, "__index", L.NewFunction(regexIndex))
}

// regexIndex handles method calls on Regex userdata.
// Methods are called with colon syntax, so the regex itself is argument 1.
func regexIndex(L *glua.LState) int {
	re := L.CheckUserData(1).Value.(*regexp.Regexp)
	method := L.CheckString(2)

	switch method {
	case "match":
		L.Push(L.NewFunction(func(L *glua.LState) int {
			pushMatches(L, re, L.CheckString(2))
			return 1
		}))
		return 1
	case "pattern":
		L.Push(L.NewFunction(func(L *glua.LState) int {
			L.Push(glua.LString(re.String()))
			return 1
		}))
		return 1
	}

	return 0
}

// pushMatches pushes a 1-based table of submatches, or nil.
func pushMatches(L *glua.LState, re *regexp.Regexp, text string) {
	matches := re.FindStringSubmatch(text)
	if matches == nil {
		L.Push(glua.LNil)
		return
	}
	tbl := L.NewTable()
	for i, m := range matches {
		tbl.RawSetInt(i+1, glua.LString(m))
	}
	L.Push(tbl)
}

// compile returns a cached compiled pattern.
func (e *Engine) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := e.regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.regexCache.Add(pattern, re)
	return re, nil
}

// registerRegexFuncs registers pad.regex.*
func (e *Engine) registerRegexFuncs() {
	registerRegexType(e.L)

	regexTable := e.L.NewTable()
	e.L.SetField(e.padTable, "regex", regexTable)

	// pad.regex.compile(pattern): Regex userdata, or nil and an error
	e.L.SetField(regexTable, "compile", e.L.NewFunction(func(L *glua.LState) int {
		re, err := e.compile(L.CheckString(1))
		if err != nil {
			L.Push(glua.LNil)
			L.Push(glua.LString(err.Error()))
			return 2
		}

		ud := L.NewUserData()
		ud.Value = re
		L.SetMetatable(ud, L.GetTypeMetatable(luaRegexTypeName))
		L.Push(ud)
		return 1
	}))

	// pad.regex.match(pattern, text): Submatch table or nil
	e.L.SetField(regexTable, "match", e.L.NewFunction(func(L *glua.LState) int {
		re, err := e.compile(L.CheckString(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		pushMatches(L, re, L.CheckString(2))
		return 1
	}))
}

// RegexCacheLen returns the number of cached patterns.
func (e *Engine) RegexCacheLen() int {
	return e.regexCache.Len()
}

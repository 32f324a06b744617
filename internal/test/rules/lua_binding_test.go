//go:build scenario

package rules

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

type Scenario struct {
	Name  string
	Steps []Step
}

type Step struct {
	Kind string
	Args map[string]any
}

func loadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	registerScenarioType(state)
	registerScenarioConstructor(state)
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "character", Function: scenarioCharacter},
	{Name: "define", Function: scenarioDefine},
	{Name: "equip", Function: scenarioEquip},
	{Name: "talent", Function: scenarioTalent},
	{Name: "species", Function: scenarioSpecies},
	{Name: "condition", Function: scenarioCondition},
	{Name: "install", Function: scenarioInstall},
	{Name: "set_state", Function: scenarioSetState},
	{Name: "flag", Function: scenarioFlag},
	{Name: "ad_hoc", Function: scenarioAdHoc},
	{Name: "resolve_skill", Function: scenarioResolveSkill},
	{Name: "resolve_attack", Function: scenarioResolveAttack},
	{Name: "resolve_defense", Function: scenarioResolveDefense},
	{Name: "audit", Function: scenarioAudit},
}

func scenarioCharacter(state *lua.State) int {
	return appendTableStep(state, "character")
}

func scenarioDefine(state *lua.State) int {
	return appendTableStep(state, "define")
}

func scenarioEquip(state *lua.State) int {
	return appendRefStep(state, "equip")
}

func scenarioTalent(state *lua.State) int {
	return appendRefStep(state, "talent")
}

func scenarioSpecies(state *lua.State) int {
	return appendRefStep(state, "species")
}

func scenarioCondition(state *lua.State) int {
	return appendRefStep(state, "condition")
}

func scenarioInstall(state *lua.State) int {
	return appendRefStep(state, "install")
}

func scenarioSetState(state *lua.State) int {
	return appendTableStep(state, "set_state")
}

func scenarioFlag(state *lua.State) int {
	scenario := checkScenario(state)
	actor := lua.CheckString(state, 2)
	name := lua.CheckString(state, 3)
	value := true
	if !state.IsNoneOrNil(4) {
		value = state.ToBoolean(4)
	}
	appendStep(scenario, "flag", map[string]any{"actor": actor, "name": name, "value": value})
	return 0
}

func scenarioAdHoc(state *lua.State) int {
	return appendTableStep(state, "ad_hoc")
}

func scenarioResolveSkill(state *lua.State) int {
	return appendTableStep(state, "resolve_skill")
}

func scenarioResolveAttack(state *lua.State) int {
	return appendTableStep(state, "resolve_attack")
}

func scenarioResolveDefense(state *lua.State) int {
	return appendTableStep(state, "resolve_defense")
}

func scenarioAudit(state *lua.State) int {
	return appendTableStep(state, "audit")
}

// appendTableStep records a step whose single argument is an options table.
func appendTableStep(state *lua.State, kind string) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, kind, data)
	return 0
}

// appendRefStep records a step binding an actor to a content definition.
func appendRefStep(state *lua.State, kind string) int {
	scenario := checkScenario(state)
	actor := lua.CheckString(state, 2)
	definition := lua.CheckString(state, 3)
	data := map[string]any{"actor": actor, "definition": definition}
	for key, value := range optionalTable(state, 4) {
		data[key] = value
	}
	appendStep(scenario, kind, data)
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	case lua.TypeUserData:
		return state.ToUserData(index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}

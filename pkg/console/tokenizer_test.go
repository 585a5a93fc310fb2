package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain words", `User 1234`, []string{"User", "1234"}},
		{"extra whitespace", "  User \t 1234  ", []string{"User", "1234"}},
		{"quoted with spaces", `User "12 34", `, []string{"User", "12 34"}},
		{"dotted update args", `User "id", "first_name", "John"`, []string{"User", "id", "first_name", "John"}},
		{"list tail drops the rest", `Place p1 amenity_ids ["a", "b"] extra`, []string{"Place", "p1", "amenity_ids", `["a", "b"]`}},
		{"brackets inside quotes", `User u1 bio "I like [x]"`, []string{"User", "u1", "bio", "I like [x]"}},
		{"unclosed quote", `User u1 name "unclosed`, []string{"User", "u1", "name", "unclosed"}},
		{"single quotes are literal", `User u1 note 'a"b\'`, []string{"User", "u1", "note", `a"b\`}},
		{"escaped double quote", `User u1 say "say \"hi\""`, []string{"User", "u1", "say", `say "hi"`}},
		{"backslash outside quotes", `User u1 path a\ b`, []string{"User", "u1", "path", "a b"}},
		{"quoted comma kept", `User u1 comma "a,"`, []string{"User", "u1", "comma", "a,"}},
		{"unbalanced brace", `User u1 {bad`, []string{"User", "u1", "{bad"}},
		{"empty quoted word", `User ""`, []string{"User", ""}},
		{"nested literal", `User u1 tags [[1], {"a": [2]}]`, []string{"User", "u1", "tags", `[[1], {"a": [2]}]`}},
		{"lone comma", `User , 12`, []string{"User", "12"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, texts(Tokenize(tc.line)))
		})
	}

	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   "))
}

func TestTokenize_Provenance(t *testing.T) {
	tokens := Tokenize(`User u1 "Al_ex", name=Bo_b key="v_1" ["x"]`)
	if assert.Len(t, tokens, 6) {
		assert.False(t, tokens[1].Quoted)
		assert.True(t, tokens[2].Quoted)
		assert.Equal(t, `"Al_ex"`, tokens[2].Raw)
		assert.False(t, tokens[3].Quoted)
		assert.True(t, tokens[4].Quoted)
		assert.Equal(t, "key=v_1", tokens[4].Text)
		assert.Equal(t, `key="v_1"`, tokens[4].Raw)
		assert.True(t, tokens[5].Literal)
	}
}

func TestTokenize_DictUpdate(t *testing.T) {
	tokens := Tokenize(`User "38f2-aa", {"first_name": "John", "age": 89}`)
	if assert.Len(t, tokens, 3) {
		assert.Equal(t, "User", tokens[0].Text)
		assert.Equal(t, "38f2-aa", tokens[1].Text)
		assert.True(t, tokens[1].Quoted)
		assert.Equal(t, `{"first_name": "John", "age": 89}`, tokens[2].Text)
		assert.True(t, tokens[2].Literal)
	}
}

func TestTokenizeParams(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"no literal", `Place name="a_b" rooms=3`, []string{"Place", "name=a_b", "rooms=3"}},
		{"literal first", `Place ids=["a","b"] name="x" rooms=3`, []string{"Place", "ids=", `["a","b"]`, "name=x", "rooms=3"}},
		{"two literals", `Place a=[1] b={"k": [2]} c=4`, []string{"Place", "a=", "[1]", "b=", `{"k": [2]}`, "c=4"}},
		{"unbalanced tail", `Place a=[1] b=[2`, []string{"Place", "a=", "[1]", "b=[2"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, texts(TokenizeParams(tc.line)))
		})
	}
}

package local

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextSet(t *testing.T) {
	set := NewSet("Started new chat with %s", NewTrans(Ara, "بدأت محادثة جديدة مع %s"))

	assert.Equal(t, "Started new chat with %s", set.Text(Eng))
	assert.Equal(t, "Started new chat with Luna-X", set.Format(Eng, "Luna-X"))
	assert.Equal(t, "بدأت محادثة جديدة مع Luna-X", set.Format(Ara, "Luna-X"))
	assert.Equal(t, "Started new chat with Luna-O", set.DefaultFormat("Luna-O"))
	assert.Equal(t, "Started new chat with %s", set.Text(Language("fr")))
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, Ara, ParseLanguage("ar"))
	assert.Equal(t, Ara, ParseLanguage(" AR-eg "))
	assert.Equal(t, Eng, ParseLanguage("en"))
	assert.Equal(t, Eng, ParseLanguage(""))
	assert.Equal(t, Eng, ParseLanguage("fr"))
	assert.True(t, Ara.IsRTL())
	assert.False(t, Eng.IsRTL())
}

func TestTextSetHas(t *testing.T) {
	set := NewSet("Hello", NewTrans(Ara, "مرحبا"))
	assert.True(t, set.Has(Eng))
	assert.True(t, set.Has(Ara))
	assert.False(t, NewSet("Hello").Has(Ara))
}

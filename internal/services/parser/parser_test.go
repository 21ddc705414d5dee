package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/interfaces"
	"github.com/safkanlabs/safkan/internal/models"
)

func newTestParser() *Parser {
	return New(arbor.NewLogger())
}

func renderedPage(kind interfaces.PageKind, html string) *interfaces.RenderedPage {
	return &interfaces.RenderedPage{Kind: kind, HTML: html}
}

const racesHTML = `
<html><body>
<table class="menu"><tr><td>Anasayfa</td><td>Atlar</td></tr></table>
<table>
<thead><tr>
<th>Tarih</th><th>Şehir</th><th>Koşu</th><th>S</th><th>Derece</th>
<th>Mesafe</th><th>Pist</th><th>Jokey</th><th>Kilo</th><th>İkramiye</th>
</tr></thead>
<tbody>
<tr><td>15.06.2024</td><td>İstanbul</td><td>Handikap 15</td><td>3</td><td>1.33.94</td>
<td>1400</td><td>Çim</td><td>A. Çelik</td><td>58</td><td>120.000</td></tr>
<tr><td>Tarih</td><td>Şehir</td><td>Koşu</td><td>S</td><td>Derece</td>
<td>Mesafe</td><td>Pist</td><td>Jokey</td><td>Kilo</td><td>İkramiye</td></tr>
<tr><td>-</td><td>Ankara</td><td>Bozuk satır</td><td>1</td><td>1.40.00</td>
<td>1600</td><td>Kum</td><td>B. Demir</td><td>57</td><td>90.000</td></tr>
<tr><td>01.05.2024</td><td>Ankara</td><td>Maiden</td><td>1</td><td>1.40.00</td>
<td>1600</td><td>Kum</td><td>B. Demir</td><td>57</td><td>90.000</td></tr>
</tbody>
</table>
</body></html>`

func TestParseRaces(t *testing.T) {
	p := newTestParser()

	records, err := p.ParseRaces(renderedPage(interfaces.PageRaces, racesHTML))
	require.NoError(t, err)

	// four body rows: one good, one header echo, one unparseable date,
	// one good
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Handikap 15", first.RaceName)
	assert.Equal(t, "İstanbul", first.City)
	assert.Equal(t, 1400, first.Distance)
	assert.Equal(t, "Çim", first.Track)
	assert.Equal(t, 3, first.Position)
	assert.Equal(t, "1.33.94", first.RaceTime)
	assert.Equal(t, "A. Çelik", first.Jockey)
	assert.Equal(t, "58", first.Weight)
	assert.Equal(t, "120.000", first.Earnings)
	assert.Equal(t, 2024, first.RaceDate.Year())

	second := records[1]
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, "Ankara", second.City)

	// key assignment belongs to the sync engine, not the parser
	assert.Empty(t, first.Key)
	assert.Empty(t, first.HorseID)
}

func TestParseRaces_SchemaDrift(t *testing.T) {
	p := newTestParser()

	html := `<html><body><table><tr><th>Ürün</th><th>Fiyat</th></tr>
<tr><td>a</td><td>b</td></tr></table></body></html>`

	_, err := p.ParseRaces(renderedPage(interfaces.PageRaces, html))
	assert.ErrorIs(t, err, ErrSchemaDrift)
}

func TestParseRaces_EmptyDocument(t *testing.T) {
	p := newTestParser()

	_, err := p.ParseRaces(renderedPage(interfaces.PageRaces, "<html><body></body></html>"))
	assert.ErrorIs(t, err, ErrSchemaDrift)
}

const registrationsHTML = `
<html><body>
<table>
<thead><tr>
<th>Tarih</th><th>Şehir</th><th>Koşu</th><th>Mesafe</th><th>Jokey</th><th>Durum</th>
</tr></thead>
<tbody>
<tr><td>20.06.2024</td><td>Ankara</td><td>Maiden</td><td>1600</td><td></td><td>Kayıt</td></tr>
<tr><td>22.06.2024</td><td>İzmir</td><td>Handikap</td><td>1400</td><td>C. Kaya</td><td>Deklare</td></tr>
<tr><td>25.06.2024</td><td>Bursa</td><td>Şartlı</td><td>1200</td><td>D. Yıldız</td><td></td></tr>
</tbody>
</table>
</body></html>`

func TestParseRegistrations(t *testing.T) {
	p := newTestParser()

	regs, err := p.ParseRegistrations(renderedPage(interfaces.PageRegistrations, registrationsHTML))
	require.NoError(t, err)
	require.Len(t, regs, 3)

	assert.Equal(t, models.RegistrationKayit, regs[0].Type)
	assert.Equal(t, "Ankara", regs[0].City)
	assert.Equal(t, 1600, regs[0].Distance)

	assert.Equal(t, models.RegistrationDeklare, regs[1].Type)
	assert.Equal(t, "C. Kaya", regs[1].Jockey)

	// empty state with a fixed jockey means the entry was declared
	assert.Equal(t, models.RegistrationDeklare, regs[2].Type)
}

func TestParseEntryState(t *testing.T) {
	assert.Equal(t, models.RegistrationDeklare, parseEntryState("Deklare", ""))
	assert.Equal(t, models.RegistrationDeklare, parseEntryState("d", ""))
	assert.Equal(t, models.RegistrationDeklare, parseEntryState("D", ""))
	assert.Equal(t, models.RegistrationDeklare, parseEntryState("", "A. Jokey"))
	assert.Equal(t, models.RegistrationKayit, parseEntryState("Kayıt", ""))
	assert.Equal(t, models.RegistrationKayit, parseEntryState("", ""))
}

const gallopsHTML = `
<html><body>
<table>
<thead><tr>
<th>Tarih</th><th>Hipodrom</th><th>Mesafe</th><th>Derece</th><th>Binici</th><th>Açıklama</th>
</tr></thead>
<tbody>
<tr><td>10.06.2024</td><td>Veliefendi</td><td>800</td><td>52.1</td><td>E. Usta</td><td>Kum pist</td></tr>
<tr><td>12.06.2024</td><td>Veliefendi</td><td>1000</td><td>1.05.3</td><td>E. Usta</td><td></td></tr>
</tbody>
</table>
</body></html>`

func TestParseGallops(t *testing.T) {
	p := newTestParser()

	gallops, err := p.ParseGallops(renderedPage(interfaces.PageGallops, gallopsHTML))
	require.NoError(t, err)
	require.Len(t, gallops, 2)

	assert.Equal(t, "Veliefendi", gallops[0].Racecourse)
	assert.Equal(t, 800, gallops[0].Distance)
	assert.Equal(t, "52.1", gallops[0].Time)
	assert.Equal(t, "E. Usta", gallops[0].Rider)
	assert.Equal(t, "Kum pist", gallops[0].Notes)
}

const pedigreeHTML = `
<html><body>
<table>
<tr><td>Babanın Babası</td><td>GRANDSIRE ONE</td></tr>
<tr><td>Babanın Annesi</td><td>GRANDDAM ONE</td></tr>
<tr><td>Annenin Babası</td><td>GRANDSIRE TWO</td></tr>
<tr><td>Annenin Annesi</td><td>GRANDDAM TWO</td></tr>
<tr><td>Babanın Babasının Babası</td><td>GREAT ONE</td></tr>
<tr><td>Annenin Babasının Annesi</td><td>GREAT TWO</td></tr>
</table>
</body></html>`

func TestParsePedigree(t *testing.T) {
	p := newTestParser()

	pedigree, err := p.ParsePedigree(renderedPage(interfaces.PagePedigree, pedigreeHTML))
	require.NoError(t, err)

	// the first row is headers to goquery but data to us
	assert.Equal(t, "GRANDSIRE ONE", pedigree.SireSire)
	assert.Equal(t, "GRANDDAM ONE", pedigree.SireDam)
	assert.Equal(t, "GRANDSIRE TWO", pedigree.DamSire)
	assert.Equal(t, "GRANDDAM TWO", pedigree.DamDam)
	assert.Equal(t, "GREAT ONE", pedigree.SireSireSire)
	assert.Equal(t, "GREAT TWO", pedigree.DamSireDam)
	assert.Empty(t, pedigree.SireSireDam)
	assert.Empty(t, pedigree.DamSireSire)
}

const summaryHTML = `
<html><body>
<table>
<tr><td>Koşu Sayısı</td><td>24</td></tr>
<tr><td>Birincilik</td><td>6</td></tr>
<tr><td>Tabla</td><td>10</td></tr>
<tr><td>Kazanç</td><td>1.250.000 TL</td></tr>
<tr><td>Baba</td><td>SIRE NAME</td></tr>
<tr><td>Anne</td><td>DAM NAME</td></tr>
</table>
</body></html>`

func TestParseSummary(t *testing.T) {
	p := newTestParser()

	summary, err := p.ParseSummary(renderedPage(interfaces.PageSummary, summaryHTML))
	require.NoError(t, err)

	assert.Equal(t, 24, summary.RaceCount)
	assert.Equal(t, 6, summary.WinCount)
	assert.Equal(t, 10, summary.PlaceCount)
	assert.Equal(t, "1.250.000 TL", summary.TotalEarnings)
	assert.Equal(t, "SIRE NAME", summary.Sire)
	assert.Equal(t, "DAM NAME", summary.Dam)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "Handikap 15", normalizeText("  Handikap \n\t 15  "))
	assert.Equal(t, "", normalizeText("   "))
}

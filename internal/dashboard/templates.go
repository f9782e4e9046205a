package dashboard

// ── Base layout ───────────────────────────────────────────────────────────────

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
{{if and .AutoRefresh (gt .RefreshSecs 0)}}<meta http-equiv="refresh" content="{{.RefreshSecs}}">{{end}}
<title>{{.Title}}</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:system-ui,-apple-system,'Segoe UI',sans-serif;background:#f6f8fa;color:#1f2328;font-size:14px;line-height:1.5}
a{color:#0969da;text-decoration:none}
a:hover{text-decoration:underline}
nav{background:#24292f;padding:10px 16px;display:flex;gap:16px;align-items:center}
nav .brand{color:#fff;font-weight:700;font-size:15px;margin-right:8px}
nav a{color:#d0d7de;padding:4px 8px;border-radius:4px}
nav a.active{background:#57606a;color:#fff}
main{padding:16px;max-width:1280px;margin:0 auto}
h1{font-size:22px;font-weight:700;margin-bottom:8px}
.caption{color:#57606a;font-size:12px;margin-bottom:12px}
.notice{background:#fff8c5;border:1px solid #d4a72c;border-radius:6px;padding:8px 12px;margin-bottom:12px}
.notice li{margin-left:16px}
.info{background:#ddf4ff;border:1px solid #54aeff;border-radius:6px;padding:8px 12px;margin:12px 0}
.filters{display:flex;gap:12px;flex-wrap:wrap;align-items:flex-end;margin-bottom:12px;background:#fff;padding:10px 12px;border-radius:6px;border:1px solid #d0d7de}
.filters label{font-size:12px;color:#57606a;display:flex;flex-direction:column;gap:2px}
.filters select{border:1px solid #d0d7de;border-radius:4px;padding:4px 6px;font-size:13px;min-width:180px}
.filters button{background:#1f883d;border:none;color:#fff;padding:6px 14px;border-radius:4px;cursor:pointer}
.grid{display:flex;gap:12px;margin-bottom:12px}
.card{background:#fff;border:1px solid #d0d7de;border-radius:6px;padding:12px 16px}
.card h3{font-size:16px;margin-bottom:4px}
.card p{margin:4px 0}
.card .meta{color:#57606a;font-size:12px}
.card .actions{display:flex;gap:12px;margin-top:8px}
.btn{display:inline-block;border:1px solid #d0d7de;border-radius:4px;padding:4px 10px;background:#f6f8fa}
.center{text-align:center}
.modal-bg{position:fixed;inset:0;background:#0008;display:flex;align-items:center;justify-content:center}
.modal{background:#fff;border-radius:8px;padding:16px 20px;width:min(720px,92vw);max-height:85vh;overflow-y:auto}
.modal-hdr{display:flex;justify-content:space-between;align-items:center;margin-bottom:8px}
.entry{border-bottom:1px solid #d0d7de;padding:8px 0}
footer{text-align:center;color:#8c959f;font-size:13px;border-top:1px solid #d0d7de;margin-top:24px;padding:12px}
</style>
</head>
<body>
<nav>
  <span class="brand">DCO</span>
  <a href="/" {{if eq .Nav "activities"}}class="active"{{end}}>Actividades</a>
  <a href="/library" {{if eq .Nav "library"}}class="active"{{end}}>Biblioteca</a>
</nav>
<main>
{{if .Warnings}}<div class="notice"><strong>Aviso:</strong><ul>{{range .Warnings}}<li>{{.Message}}</li>{{end}}</ul></div>{{end}}
{{template "content" .}}
</main>
<footer>{{.Footer}}</footer>
</body>
</html>{{end}}
`

// ── Activities ────────────────────────────────────────────────────────────────

const tmplActivities = `
{{define "content"}}
<h1>{{.Title}}</h1>
<form class="filters" method="get" action="/">
  <label>Filtrar por Línea
    <select name="line">
      <option value="all">Todas</option>
      {{range .Lines}}<option value="{{.}}" {{if eq . $.LineSel}}selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <label>Filtrar por Máquina
    <select name="machine">
      <option value="all">Todas</option>
      {{range .Machines}}<option value="{{.}}" {{if eq . $.MachineSel}}selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <button type="submit">Aplicar</button>
</form>
<p class="caption">Mostrando {{.Count}} registros</p>

{{if eq .Count 0}}
<div class="info">No hay registros disponibles para los filtros seleccionados.</div>
{{else}}
{{range .Rows}}
<div class="grid">
  {{range .}}
  <div class="card" style="width:{{$.ColumnWidth}}">
    <h3>{{.Activity}}</h3>
    <p>{{.Description}}</p>
    <p class="meta">Fecha: {{orDash .Date}}</p>
    <p class="meta">Línea: {{orDash .Line}} | Máquina: {{orDash .Machine}}</p>
    <div class="actions">
      <a class="btn" href="{{.HistoryURL}}">Historial</a>
      {{if .DocumentLink}}<a class="btn" href="{{.DocumentLink}}" target="_blank" rel="noopener">Descargar PDF</a>{{end}}
    </div>
  </div>
  {{end}}
</div>
{{end}}
{{end}}

{{if .Detail.IsOpen}}
<div class="modal-bg">
  <div class="modal">
    <div class="modal-hdr">
      <strong>Historial de actualizaciones: {{orDash .Detail.Key.Line}} | {{orDash .Detail.Key.Machine}}</strong>
      <a class="btn" href="{{.CloseURL}}">Cerrar</a>
    </div>
    {{if .History}}
      {{range .History}}
      <div class="entry">
        <p><strong>{{fmtStamp .Timestamp}}</strong> - {{.Activity}}</p>
        <p>{{.Description}}</p>
        {{if .DocumentLink}}<p><a href="{{.DocumentLink}}" target="_blank" rel="noopener">Ver PDF</a></p>{{end}}
      </div>
      {{end}}
    {{else}}
      <div class="info">No hay historial disponible para esta línea/máquina.</div>
    {{end}}
  </div>
</div>
{{end}}
{{end}}
`

// ── Library ───────────────────────────────────────────────────────────────────

const tmplLibrary = `
{{define "content"}}
<h1>Biblioteca Técnica de Soporte</h1>
<p class="caption">Acceso rápido a manuales, programas de PLC y procedimientos.</p>
{{if .Loaded}}
<form class="filters" method="get" action="/library">
  <label>Filtrar por Categoría
    <select name="category">
      <option value="all">Todas</option>
      {{range .Categories}}<option value="{{.}}" {{if eq . $.CategorySel}}selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <label>Filtrar por Equipo
    <select name="equipment">
      <option value="all">Todos</option>
      {{range .Equipment}}<option value="{{.}}" {{if eq . $.EquipSel}}selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label>
  <button type="submit">Aplicar</button>
</form>
{{if eq .Count 0}}
<div class="info">No se encontraron documentos con esos filtros.</div>
{{else}}
{{range .Rows}}
<div class="grid">
  {{range .}}
  <div class="card" style="width:{{$.ColumnWidth}}">
    <h3>{{.Name}}</h3>
    <p class="meta">EQUIPO: {{.Equipment}}</p>
    <p class="meta">CATEGORÍA: {{.Category}}</p>
    <p class="center"><i>{{.Description}}</i></p>
    {{if .Link}}<div class="actions"><a class="btn" href="{{.Link}}" target="_blank" rel="noopener">DESCARGAR / VER</a></div>{{end}}
  </div>
  {{end}}
</div>
{{end}}
{{end}}
{{else}}
<div class="notice">No hay datos disponibles.</div>
{{end}}
{{end}}
`

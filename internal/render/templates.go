package render

const layoutTemplate = `{{define "head"}}<meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.}}</title>
    <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
    <link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css">
    <link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css">
    <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
    <script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>{{end}}

{{define "map"}}<div id="map" style="width: 100%; height: 500px;"></div>
    <script>
        var map = L.map("map").setView([{{.Center.Latitude}}, {{.Center.Longitude}}], {{.Zoom}});
        L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
            maxZoom: 19,
            attribution: "&copy; OpenStreetMap contributors"
        }).addTo(map);
        var cluster = L.markerClusterGroup();
        var markers = {{.Markers}};
        markers.forEach(function (m) {
            L.marker([m.lat, m.lon]).bindPopup(m.popup).addTo(cluster);
        });
        map.addLayer(cluster);
    </script>{{end}}

{{define "mapPage"}}<!DOCTYPE html>
<html>
<head>
    {{template "head" .Title}}
</head>
<body style="margin: 0;">
    {{template "map" .}}
</body>
</html>
{{end}}

{{define "resultsPage"}}<!DOCTYPE html>
<html>
<head>
    {{template "head" "Stations Vélib"}}
</head>
<body>
    <h3>Résultats pour {{.Address}}</h3>
    {{if not .View.Markers}}<p>Aucune station dans un rayon de {{printf "%.0f" .Radius}} m.</p>{{end}}
    {{template "map" .View}}
</body>
</html>
{{end}}

{{define "formPage"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Recherche de Vélib</title>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; text-align: center; padding: 20px; }
        h2 { color: #333; }
        form { background: white; padding: 20px; display: inline-block; border-radius: 10px; box-shadow: 0 0 10px rgba(0, 0, 0, 0.1); }
        input { padding: 10px; margin: 10px 0; width: 80%; border: 1px solid #ccc; border-radius: 5px; }
        button { background: #28a745; color: white; border: none; padding: 10px 20px; cursor: pointer; border-radius: 5px; }
        button:hover { background: #218838; }
    </style>
</head>
<body>
    <h2>Entrez une adresse pour trouver les stations Vélib les plus proches</h2>
    <form action="/velib" method="get">
        <input type="text" name="address" placeholder="Entrez une adresse" required>
        <button type="submit">Rechercher</button>
    </form>
</body>
</html>
{{end}}`
